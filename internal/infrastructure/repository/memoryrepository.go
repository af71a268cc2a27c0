package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
)

// MemoryAccessGrantRepository keeps grants in process memory. It is used when
// the database driver is "memory"; nothing survives a restart.
type MemoryAccessGrantRepository struct {
	mu     sync.RWMutex
	grants map[access.Key]*access.Grant
	nextID uint
}

func NewMemoryAccessGrantRepository() *MemoryAccessGrantRepository {
	return &MemoryAccessGrantRepository{grants: make(map[access.Key]*access.Grant)}
}

func (r *MemoryAccessGrantRepository) Grant(ctx context.Context, g *access.Grant) error {
	return r.GrantBatch(ctx, []*access.Grant{g})
}

// GrantBatch builds every stored grant before touching the map so a bad
// grant leaves the repository unchanged.
func (r *MemoryAccessGrantRepository) GrantBatch(ctx context.Context, grants []*access.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[access.Key]*access.Grant, len(grants))
	nextID := r.nextID
	for _, g := range grants {
		var id uint
		createdAt := g.CreatedAt()
		if existing, ok := staged[g.Key()]; ok {
			id = existing.ID()
			createdAt = existing.CreatedAt()
		} else if existing, ok := r.grants[g.Key()]; ok {
			id = existing.ID()
			createdAt = existing.CreatedAt()
		} else {
			nextID++
			id = nextID
		}

		stored, err := access.ReconstructGrant(id, g.UserID(), g.AssetID(), g.Source(), g.TransactionID(),
			g.GrantedAt(), g.LedgerSynced(), g.LedgerSyncedAt(), g.LedgerAttempts(), createdAt, time.Now().UTC())
		if err != nil {
			return err
		}
		staged[g.Key()] = stored
	}

	for key, stored := range staged {
		r.grants[key] = stored
	}
	r.nextID = nextID

	for _, g := range grants {
		if g.ID() == 0 {
			if err := g.SetID(staged[g.Key()].ID()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *MemoryAccessGrantRepository) Exists(ctx context.Context, userID string, assetID uint64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grants[access.Key{UserID: userID, AssetID: assetID}]
	return ok, nil
}

func (r *MemoryAccessGrantRepository) Revoke(ctx context.Context, userID string, assetID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := access.Key{UserID: userID, AssetID: assetID}
	if _, ok := r.grants[key]; !ok {
		return false, nil
	}
	delete(r.grants, key)
	return true, nil
}

func (r *MemoryAccessGrantRepository) Get(ctx context.Context, userID string, assetID uint64) (*access.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.grants[access.Key{UserID: userID, AssetID: assetID}]
	if !ok {
		return nil, nil
	}
	return copyGrant(g), nil
}

func (r *MemoryAccessGrantRepository) GetByTransactionID(ctx context.Context, transactionID string) (*access.Grant, error) {
	list := r.filter(func(g *access.Grant) bool { return g.TransactionIDValue() == transactionID })
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
	return list[0], nil
}

func (r *MemoryAccessGrantRepository) ListByUser(ctx context.Context, userID string) ([]*access.Grant, error) {
	return newestFirst(r.filter(func(g *access.Grant) bool { return g.UserID() == userID })), nil
}

func (r *MemoryAccessGrantRepository) ListByAsset(ctx context.Context, assetID uint64) ([]*access.Grant, error) {
	return newestFirst(r.filter(func(g *access.Grant) bool { return g.AssetID() == assetID })), nil
}

func (r *MemoryAccessGrantRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.grants)), nil
}

func (r *MemoryAccessGrantRepository) ListLedgerPending(ctx context.Context, limit, maxAttempts int) ([]*access.Grant, error) {
	list := r.filter(func(g *access.Grant) bool {
		return !g.LedgerSynced() && (maxAttempts <= 0 || g.LedgerAttempts() < maxAttempts)
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].GrantedAt().Equal(list[j].GrantedAt()) {
			return list[i].ID() < list[j].ID()
		}
		return list[i].GrantedAt().Before(list[j].GrantedAt())
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *MemoryAccessGrantRepository) UpdateLedgerState(ctx context.Context, g *access.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.grants[g.Key()]
	if !ok || existing.ID() != g.ID() {
		return nil
	}
	updated, err := access.ReconstructGrant(existing.ID(), existing.UserID(), existing.AssetID(), existing.Source(),
		existing.TransactionID(), existing.GrantedAt(), g.LedgerSynced(), g.LedgerSyncedAt(), g.LedgerAttempts(),
		existing.CreatedAt(), time.Now().UTC())
	if err != nil {
		return err
	}
	r.grants[g.Key()] = updated
	return nil
}

func (r *MemoryAccessGrantRepository) filter(keep func(*access.Grant) bool) []*access.Grant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*access.Grant, 0)
	for _, g := range r.grants {
		if keep(g) {
			out = append(out, copyGrant(g))
		}
	}
	return out
}

func newestFirst(list []*access.Grant) []*access.Grant {
	sort.Slice(list, func(i, j int) bool {
		if list[i].GrantedAt().Equal(list[j].GrantedAt()) {
			return list[i].ID() > list[j].ID()
		}
		return list[i].GrantedAt().After(list[j].GrantedAt())
	})
	return list
}

func copyGrant(g *access.Grant) *access.Grant {
	c, _ := access.ReconstructGrant(g.ID(), g.UserID(), g.AssetID(), g.Source(), g.TransactionID(),
		g.GrantedAt(), g.LedgerSynced(), g.LedgerSyncedAt(), g.LedgerAttempts(), g.CreatedAt(), g.UpdatedAt())
	return c
}

// MemoryAssetRepository keeps the catalog in process memory.
type MemoryAssetRepository struct {
	mu     sync.RWMutex
	assets map[uint64]*asset.Asset
	nextID uint64
}

func NewMemoryAssetRepository() *MemoryAssetRepository {
	return &MemoryAssetRepository{assets: make(map[uint64]*asset.Asset)}
}

func (r *MemoryAssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID() == 0 {
		r.nextID++
		if err := a.SetID(r.nextID); err != nil {
			return err
		}
	} else if a.ID() > r.nextID {
		r.nextID = a.ID()
	}
	r.assets[a.ID()] = copyAsset(a)
	return nil
}

func (r *MemoryAssetRepository) Update(ctx context.Context, a *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[a.ID()]; !ok {
		return asset.ErrAssetNotFound
	}
	r.assets[a.ID()] = copyAsset(a)
	return nil
}

func (r *MemoryAssetRepository) GetByID(ctx context.Context, id uint64) (*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, nil
	}
	return copyAsset(a), nil
}

func (r *MemoryAssetRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uint64]*asset.Asset, len(ids))
	for _, id := range ids {
		if a, ok := r.assets[id]; ok {
			out[id] = copyAsset(a)
		}
	}
	return out, nil
}

func (r *MemoryAssetRepository) List(ctx context.Context, status *asset.Status) ([]*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*asset.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		if status == nil || a.Status() == *status {
			out = append(out, copyAsset(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *MemoryAssetRepository) CountByStatus(ctx context.Context) (map[asset.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[asset.Status]int64)
	for _, a := range r.assets {
		out[a.Status()]++
	}
	return out, nil
}

func copyAsset(a *asset.Asset) *asset.Asset {
	c, _ := asset.ReconstructAsset(a.ID(), a.Title(), a.Description(), a.Price(), a.Status(), a.Provider(),
		a.YouTubeID(), a.Tags(), a.FileName(), a.FileSize(), a.MimeType(), a.CreatedAt(), a.UpdatedAt())
	return c
}
