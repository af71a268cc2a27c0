// Package testutil provides in-memory collaborators for testing the access
// application layer.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/application/asset/storage"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/domain/payment"
)

// MockGrantRepository is an in-memory access.Repository with error injection.
type MockGrantRepository struct {
	mu     sync.RWMutex
	grants map[access.Key]*access.Grant
	nextID uint

	GrantErr  error
	ExistsErr error
	RevokeErr error
	ListErr   error

	GrantCalls int
}

func NewMockGrantRepository() *MockGrantRepository {
	return &MockGrantRepository{grants: make(map[access.Key]*access.Grant)}
}

func (m *MockGrantRepository) Grant(ctx context.Context, g *access.Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GrantCalls++
	if m.GrantErr != nil {
		return m.GrantErr
	}

	if existing, ok := m.grants[g.Key()]; ok {
		_ = g.SetID(existing.ID())
	} else {
		m.nextID++
		_ = g.SetID(m.nextID)
	}
	clone := *g
	m.grants[g.Key()] = &clone
	return nil
}

// GrantBatch counts as one Grant call and stores nothing when GrantErr is set.
func (m *MockGrantRepository) GrantBatch(ctx context.Context, grants []*access.Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GrantCalls++
	if m.GrantErr != nil {
		return m.GrantErr
	}

	for _, g := range grants {
		if existing, ok := m.grants[g.Key()]; ok {
			_ = g.SetID(existing.ID())
		} else {
			m.nextID++
			_ = g.SetID(m.nextID)
		}
		clone := *g
		m.grants[g.Key()] = &clone
	}
	return nil
}

func (m *MockGrantRepository) Exists(ctx context.Context, userID string, assetID uint64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, ok := m.grants[access.Key{UserID: userID, AssetID: assetID}]
	return ok, nil
}

func (m *MockGrantRepository) Revoke(ctx context.Context, userID string, assetID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RevokeErr != nil {
		return false, m.RevokeErr
	}
	key := access.Key{UserID: userID, AssetID: assetID}
	_, ok := m.grants[key]
	delete(m.grants, key)
	return ok, nil
}

func (m *MockGrantRepository) Get(ctx context.Context, userID string, assetID uint64) (*access.Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.grants[access.Key{UserID: userID, AssetID: assetID}]
	if !ok {
		return nil, nil
	}
	clone := *g
	return &clone, nil
}

func (m *MockGrantRepository) GetByTransactionID(ctx context.Context, transactionID string) (*access.Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.grants {
		if g.TransactionIDValue() == transactionID {
			clone := *g
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MockGrantRepository) ListByUser(ctx context.Context, userID string) ([]*access.Grant, error) {
	return m.filter(func(g *access.Grant) bool { return g.UserID() == userID })
}

func (m *MockGrantRepository) ListByAsset(ctx context.Context, assetID uint64) ([]*access.Grant, error) {
	return m.filter(func(g *access.Grant) bool { return g.AssetID() == assetID })
}

func (m *MockGrantRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.grants)), nil
}

func (m *MockGrantRepository) ListLedgerPending(ctx context.Context, limit, maxAttempts int) ([]*access.Grant, error) {
	out, err := m.filter(func(g *access.Grant) bool {
		return !g.LedgerSynced() && (maxAttempts <= 0 || g.LedgerAttempts() < maxAttempts)
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockGrantRepository) UpdateLedgerState(ctx context.Context, g *access.Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.grants[g.Key()]; !ok {
		return nil
	}
	clone := *g
	m.grants[g.Key()] = &clone
	return nil
}

// Len returns the number of stored grants.
func (m *MockGrantRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.grants)
}

func (m *MockGrantRepository) filter(keep func(*access.Grant) bool) ([]*access.Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]*access.Grant, 0)
	for _, g := range m.grants {
		if keep(g) {
			clone := *g
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// MockLedger is a programmable ledger.Ledger.
type MockLedger struct {
	mu      sync.Mutex
	records map[access.Key]bool

	Configured bool
	// FailWrites makes every grant, batch and revoke report false.
	FailWrites bool
	// WriteDelay is applied to grant calls before they complete.
	WriteDelay time.Duration

	CheckCalls  int
	GrantCalls  int
	BatchCalls  int
	RevokeCalls int
}

func NewMockLedger() *MockLedger {
	return &MockLedger{records: make(map[access.Key]bool), Configured: true}
}

// Set records access directly, as if written by another process.
func (m *MockLedger) Set(userID string, assetID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[access.Key{UserID: userID, AssetID: assetID}] = true
}

func (m *MockLedger) Has(userID string, assetID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[access.Key{UserID: userID, AssetID: assetID}]
}

func (m *MockLedger) CheckAccess(ctx context.Context, userID string, assetID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckCalls++
	if !m.Configured {
		return false
	}
	return m.records[access.Key{UserID: userID, AssetID: assetID}]
}

func (m *MockLedger) GrantAccess(ctx context.Context, userID string, assetID uint64) bool {
	if m.WriteDelay > 0 {
		time.Sleep(m.WriteDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrantCalls++
	if !m.Configured || m.FailWrites {
		return false
	}
	m.records[access.Key{UserID: userID, AssetID: assetID}] = true
	return true
}

func (m *MockLedger) GrantAccessBatch(ctx context.Context, userIDs []string, assetID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls++
	if !m.Configured || m.FailWrites {
		return false
	}
	for _, u := range userIDs {
		m.records[access.Key{UserID: u, AssetID: assetID}] = true
	}
	return true
}

func (m *MockLedger) RevokeAccess(ctx context.Context, userID string, assetID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RevokeCalls++
	if !m.Configured || m.FailWrites {
		return false
	}
	delete(m.records, access.Key{UserID: userID, AssetID: assetID})
	return true
}

func (m *MockLedger) IsConfigured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Configured
}

func (m *MockLedger) NetworkInfo() ledger.NetworkInfo {
	return ledger.NetworkInfo{Provider: "mock", IsConfigured: m.IsConfigured()}
}

// Calls returns the grant call count under the lock.
func (m *MockLedger) Calls() (check, grant int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CheckCalls, m.GrantCalls
}

// MockVerifier verifies receipts whose token is registered with Accept.
type MockVerifier struct {
	mu       sync.Mutex
	receipts map[string]*payment.Record

	// Webhook is returned by ProcessWebhook; nil rejects the webhook.
	Webhook *payment.Record

	VerifyCalls int
}

func NewMockVerifier() *MockVerifier {
	return &MockVerifier{receipts: make(map[string]*payment.Record)}
}

func (m *MockVerifier) Accept(token string, record *payment.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[token] = record
}

func (m *MockVerifier) VerifyReceipt(ctx context.Context, receipt payment.Receipt) *payment.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyCalls++
	r, ok := m.receipts[receipt.Token]
	if !ok {
		return nil
	}
	clone := *r
	return &clone
}

func (m *MockVerifier) ProcessWebhook(ctx context.Context, payload []byte, signature string) *payment.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Webhook == nil {
		return nil
	}
	clone := *m.Webhook
	return &clone
}

func (m *MockVerifier) Provider() string { return "mock" }

// MockChallengeIssuer issues challenges carrying the mock payment headers.
type MockChallengeIssuer struct{}

func (MockChallengeIssuer) IssueChallenge(assetID uint64, price decimal.Decimal) *payment.Challenge {
	return &payment.Challenge{
		AssetID:  assetID,
		Price:    price,
		Currency: "USD",
		Headers: map[string]string{
			"X-Payment-Required": "true",
			"X-Payment-Amount":   price.StringFixed(2),
		},
	}
}

func (MockChallengeIssuer) Provider() string { return "mock" }

// MockAssetRepository is an in-memory asset.Repository.
type MockAssetRepository struct {
	mu     sync.RWMutex
	assets map[uint64]*asset.Asset
	nextID uint64

	GetErr error
}

func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{assets: make(map[uint64]*asset.Asset)}
}

// AddReady stores a ready HLS asset with the given id and price.
func (m *MockAssetRepository) AddReady(id uint64, title, price string) *asset.Asset {
	a, err := asset.ReconstructAsset(id, title, "", decimal.RequireFromString(price),
		asset.StatusReady, asset.ProviderHLS, "", nil, "", 0, "", time.Now(), time.Now())
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[id] = a
	if id > m.nextID {
		m.nextID = id
	}
	return a
}

func (m *MockAssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if err := a.SetID(m.nextID); err != nil {
		return err
	}
	m.assets[a.ID()] = a
	return nil
}

func (m *MockAssetRepository) Update(ctx context.Context, a *asset.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID()] = a
	return nil
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id uint64) (*asset.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.assets[id], nil
}

func (m *MockAssetRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*asset.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uint64]*asset.Asset, len(ids))
	for _, id := range ids {
		if a, ok := m.assets[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *MockAssetRepository) List(ctx context.Context, status *asset.Status) ([]*asset.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*asset.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		if status == nil || a.Status() == *status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *MockAssetRepository) CountByStatus(ctx context.Context) (map[asset.Status]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[asset.Status]int64)
	for _, a := range m.assets {
		out[a.Status()]++
	}
	return out, nil
}

// MockStorage returns a fixed manifest URL per asset.
type MockStorage struct {
	Err error
}

func (m *MockStorage) GenerateAccessDescriptor(ctx context.Context, a *asset.Asset) (*storage.Descriptor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &storage.Descriptor{
		Provider:    "mock",
		AssetID:     a.ID(),
		ManifestURL: "https://cdn.test/videos/" + a.Title() + "/manifest.m3u8",
		ExpiresIn:   300,
	}, nil
}

func (m *MockStorage) GenerateUploadURL(ctx context.Context, assetID uint64, fileName string) (*storage.UploadTarget, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &storage.UploadTarget{UploadURL: "https://upload.test/" + fileName, ExpiresIn: 3600}, nil
}

func (m *MockStorage) Name() string { return "mock" }
