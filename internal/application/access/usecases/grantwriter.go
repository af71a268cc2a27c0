package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/application/access/metrics"
	"github.com/scoutystream/scouty/internal/domain/access"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/goroutine"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// GrantOutcome reports what a grant write achieved.
type GrantOutcome struct {
	Grant *access.Grant
	// LedgerRecorded is true when the ledger confirmed the grant during this call.
	LedgerRecorded bool
	// LedgerQueued is true when the ledger write was handed to a background goroutine.
	LedgerQueued bool
	// AlreadyGranted is true when the transaction had already settled this
	// grant and nothing was written.
	AlreadyGranted bool
}

// GrantWriter performs the dual write: the local cache first, which must
// succeed, then the ledger, which is best effort. A ledger failure leaves the
// grant marked unsynced for the reconciliation job.
type GrantWriter struct {
	grants  access.Repository
	ledger  ledger.Ledger
	metrics metrics.Recorder
	async   bool
	logger  logger.Interface
}

func NewGrantWriter(
	grants access.Repository,
	ledgerClient ledger.Ledger,
	recorder metrics.Recorder,
	async bool,
	logger logger.Interface,
) *GrantWriter {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	return &GrantWriter{
		grants:  grants,
		ledger:  ledgerClient,
		metrics: recorder,
		async:   async,
		logger:  logger,
	}
}

// Write records access for one user. A transaction id settles exactly one
// (user, asset) pair: replaying it for the same pair is a no-op and replaying
// it for any other pair is denied.
func (w *GrantWriter) Write(ctx context.Context, userID string, assetID uint64, source access.Source, transactionID string) (*GrantOutcome, error) {
	grant, err := access.NewGrant(userID, assetID, source, transactionID)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid access grant", err.Error())
	}

	if transactionID != "" {
		settled, err := w.grants.GetByTransactionID(ctx, transactionID)
		if err != nil {
			w.logger.Errorw("failed to look up transaction",
				"transaction_id", transactionID, "error", err)
			return nil, fmt.Errorf("failed to look up transaction: %w", err)
		}
		if settled != nil {
			if settled.UserID() != userID || settled.AssetID() != assetID {
				w.logger.Warnw("transaction already settled another grant",
					"transaction_id", transactionID,
					"user_id", userID,
					"asset_id", assetID,
					"settled_user_id", settled.UserID(),
					"settled_asset_id", settled.AssetID(),
				)
				return nil, apperrors.NewPaymentDeniedError()
			}
			w.logger.Debugw("transaction replayed for its own grant",
				"transaction_id", transactionID, "user_id", userID, "asset_id", assetID)
			return &GrantOutcome{Grant: settled, AlreadyGranted: true}, nil
		}
	}

	if err := w.grants.Grant(ctx, grant); err != nil {
		w.metrics.CacheWrite(false)
		w.logger.Errorw("failed to record access grant",
			"user_id", userID,
			"asset_id", assetID,
			"transaction_id", transactionID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to record access grant: %w", err)
	}
	w.metrics.CacheWrite(true)

	outcome := &GrantOutcome{Grant: grant}
	if !w.ledger.IsConfigured() {
		w.logger.Debugw("ledger not configured, grant kept in local cache only",
			"user_id", userID, "asset_id", assetID)
		return outcome, nil
	}

	// the ledger write outlives a client that disconnects mid-request
	ledgerCtx := context.WithoutCancel(ctx)
	if w.async {
		outcome.LedgerQueued = true
		snapshot := *grant
		goroutine.SafeGo(w.logger, "ledger-grant", func() {
			w.syncGrant(ledgerCtx, &snapshot)
		})
		return outcome, nil
	}

	outcome.LedgerRecorded = w.syncGrant(ledgerCtx, grant)
	return outcome, nil
}

// WriteBatch upserts a grant per user in one cache transaction, then submits
// them to the ledger in one transaction. Either every user is granted in the
// cache or none is; the ledger succeeds or fails as a whole.
func (w *GrantWriter) WriteBatch(ctx context.Context, userIDs []string, assetID uint64, source access.Source) ([]*access.Grant, bool, error) {
	grants := make([]*access.Grant, 0, len(userIDs))
	for _, userID := range userIDs {
		grant, err := access.NewGrant(userID, assetID, source, "")
		if err != nil {
			return nil, false, apperrors.NewValidationError("invalid access grant", err.Error())
		}
		grants = append(grants, grant)
	}

	if err := w.grants.GrantBatch(ctx, grants); err != nil {
		w.metrics.CacheWrite(false)
		w.logger.Errorw("failed to record batch access grant",
			"asset_id", assetID, "users", len(userIDs), "error", err)
		return nil, false, fmt.Errorf("failed to record access grant: %w", err)
	}
	w.metrics.CacheWrite(true)

	if !w.ledger.IsConfigured() {
		return grants, false, nil
	}

	ok := w.ledger.GrantAccessBatch(context.WithoutCancel(ctx), userIDs, assetID)
	w.metrics.LedgerWrite("grant_batch", ok)
	if !ok {
		w.logger.Warnw("ledger batch grant failed, grants remain pending",
			"asset_id", assetID, "users", len(userIDs))
	}

	now := time.Now().UTC()
	for _, grant := range grants {
		if ok {
			grant.MarkLedgerSynced(now)
		} else {
			grant.RecordLedgerFailure()
		}
		w.saveLedgerState(ctx, grant)
	}
	return grants, ok, nil
}

// SyncGrant retries the ledger write for an existing grant.
func (w *GrantWriter) SyncGrant(ctx context.Context, grant *access.Grant) bool {
	return w.syncGrant(ctx, grant)
}

func (w *GrantWriter) syncGrant(ctx context.Context, grant *access.Grant) bool {
	ok := w.ledger.GrantAccess(ctx, grant.UserID(), grant.AssetID())
	w.metrics.LedgerWrite("grant", ok)

	if ok {
		grant.MarkLedgerSynced(time.Now().UTC())
	} else {
		grant.RecordLedgerFailure()
		w.logger.Warnw("ledger grant failed, access remains recorded locally",
			"user_id", grant.UserID(),
			"asset_id", grant.AssetID(),
			"attempts", grant.LedgerAttempts(),
		)
	}
	w.saveLedgerState(ctx, grant)
	return ok
}

func (w *GrantWriter) saveLedgerState(ctx context.Context, grant *access.Grant) {
	if err := w.grants.UpdateLedgerState(ctx, grant); err != nil {
		w.logger.Warnw("failed to persist ledger sync state",
			"user_id", grant.UserID(),
			"asset_id", grant.AssetID(),
			"error", err,
		)
	}
}
