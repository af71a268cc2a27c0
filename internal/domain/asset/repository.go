package asset

import "context"

// Repository persists the asset catalog.
type Repository interface {
	Create(ctx context.Context, a *Asset) error
	Update(ctx context.Context, a *Asset) error
	// GetByID returns nil, nil when the asset does not exist.
	GetByID(ctx context.Context, id uint64) (*Asset, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*Asset, error)
	List(ctx context.Context, status *Status) ([]*Asset, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
