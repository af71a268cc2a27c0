package ledger

import (
	"context"
	"sync"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
)

// MemoryLedger is a process-local ledger for development and demos. It is
// always configured and every write succeeds.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[string]map[uint64]bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]map[uint64]bool)}
}

func (m *MemoryLedger) CheckAccess(ctx context.Context, userID string, assetID uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[userID][assetID]
}

func (m *MemoryLedger) GrantAccess(ctx context.Context, userID string, assetID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(userID, assetID)
	return true
}

func (m *MemoryLedger) GrantAccessBatch(ctx context.Context, userIDs []string, assetID uint64) bool {
	if len(userIDs) == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range userIDs {
		m.set(id, assetID)
	}
	return true
}

func (m *MemoryLedger) RevokeAccess(ctx context.Context, userID string, assetID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[userID], assetID)
	return true
}

func (m *MemoryLedger) IsConfigured() bool { return true }

func (m *MemoryLedger) NetworkInfo() ledger.NetworkInfo {
	return ledger.NetworkInfo{Provider: "memory", IsConfigured: true}
}

func (m *MemoryLedger) set(userID string, assetID uint64) {
	assets, ok := m.entries[userID]
	if !ok {
		assets = make(map[uint64]bool)
		m.entries[userID] = assets
	}
	assets[assetID] = true
}
