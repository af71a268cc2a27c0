package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/application/access/metrics"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

type CheckAccessQuery struct {
	UserID  string
	AssetID uint64
}

type CheckAccessResult struct {
	Authorized bool
	// Source is cache or ledger when authorized.
	Source string
}

// CheckAccessUseCase decides authorization as cache OR ledger. The cache is
// consulted first and the ledger only when the cache has no grant. Cache
// errors are returned; the ledger never fails a check.
type CheckAccessUseCase struct {
	grants  access.Repository
	ledger  ledger.Ledger
	metrics metrics.Recorder
	logger  logger.Interface
}

func NewCheckAccessUseCase(
	grants access.Repository,
	ledgerClient ledger.Ledger,
	recorder metrics.Recorder,
	logger logger.Interface,
) *CheckAccessUseCase {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	return &CheckAccessUseCase{
		grants:  grants,
		ledger:  ledgerClient,
		metrics: recorder,
		logger:  logger,
	}
}

func (uc *CheckAccessUseCase) Execute(ctx context.Context, query CheckAccessQuery) (*CheckAccessResult, error) {
	if query.UserID == "" || query.AssetID == 0 {
		return &CheckAccessResult{}, nil
	}

	cached, err := uc.grants.Exists(ctx, query.UserID, query.AssetID)
	if err != nil {
		uc.logger.Errorw("failed to query access cache",
			"user_id", query.UserID, "asset_id", query.AssetID, "error", err)
		return nil, fmt.Errorf("failed to check access: %w", err)
	}
	if cached {
		uc.metrics.AccessDecision(metrics.DecisionCache)
		return &CheckAccessResult{Authorized: true, Source: metrics.DecisionCache}, nil
	}

	if uc.ledger.CheckAccess(ctx, query.UserID, query.AssetID) {
		uc.metrics.AccessDecision(metrics.DecisionLedger)
		return &CheckAccessResult{Authorized: true, Source: metrics.DecisionLedger}, nil
	}

	return &CheckAccessResult{}, nil
}

// HasAccess is Execute reduced to its decision.
func (uc *CheckAccessUseCase) HasAccess(ctx context.Context, userID string, assetID uint64) (bool, error) {
	result, err := uc.Execute(ctx, CheckAccessQuery{UserID: userID, AssetID: assetID})
	if err != nil {
		return false, err
	}
	return result.Authorized, nil
}
