package access

import "context"

// Repository is the local access cache. It is authoritative for the grants it
// holds and every error it returns is a hard failure.
type Repository interface {
	// Grant upserts g by (user, asset). Re-granting replaces grantedAt,
	// transaction and ledger bookkeeping; it never fails because the
	// grant already exists. g receives the stored ID.
	Grant(ctx context.Context, g *Grant) error

	// GrantBatch upserts every grant or none of them.
	GrantBatch(ctx context.Context, grants []*Grant) error

	Exists(ctx context.Context, userID string, assetID uint64) (bool, error)

	// Revoke deletes the grant and reports whether one was removed.
	Revoke(ctx context.Context, userID string, assetID uint64) (bool, error)

	// Get and GetByTransactionID return nil, nil when nothing matches.
	Get(ctx context.Context, userID string, assetID uint64) (*Grant, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Grant, error)
	ListByUser(ctx context.Context, userID string) ([]*Grant, error)
	ListByAsset(ctx context.Context, assetID uint64) ([]*Grant, error)
	Count(ctx context.Context) (int64, error)

	// ListLedgerPending returns grants the ledger has not confirmed, oldest
	// first, skipping those that already failed maxAttempts times.
	ListLedgerPending(ctx context.Context, limit, maxAttempts int) ([]*Grant, error)

	// UpdateLedgerState persists the ledger bookkeeping fields of g.
	UpdateLedgerState(ctx context.Context, g *Grant) error
}
