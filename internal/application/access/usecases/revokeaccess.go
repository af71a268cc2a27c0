package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/application/access/metrics"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type RevokeAccessCommand struct {
	UserID  string `json:"userId" validate:"notblank"`
	AssetID uint64 `json:"assetId" validate:"gt=0"`
}

type RevokeAccessResult struct {
	// Revoked reports whether the local cache held a grant.
	Revoked       bool `json:"revoked"`
	LedgerRevoked bool `json:"ledgerRevoked"`
}

// RevokeAccessUseCase deletes the local grant and asks the ledger to revoke.
// Revoking a grant that does not exist is not an error.
type RevokeAccessUseCase struct {
	grants  access.Repository
	ledger  ledger.Ledger
	metrics metrics.Recorder
	logger  logger.Interface
}

func NewRevokeAccessUseCase(
	grants access.Repository,
	ledgerClient ledger.Ledger,
	recorder metrics.Recorder,
	logger logger.Interface,
) *RevokeAccessUseCase {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	return &RevokeAccessUseCase{grants: grants, ledger: ledgerClient, metrics: recorder, logger: logger}
}

func (uc *RevokeAccessUseCase) Execute(ctx context.Context, cmd RevokeAccessCommand) (*RevokeAccessResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	revoked, err := uc.grants.Revoke(ctx, cmd.UserID, cmd.AssetID)
	if err != nil {
		uc.logger.Errorw("failed to revoke access grant",
			"user_id", cmd.UserID, "asset_id", cmd.AssetID, "error", err)
		return nil, fmt.Errorf("failed to revoke access: %w", err)
	}

	result := &RevokeAccessResult{Revoked: revoked}
	if uc.ledger.IsConfigured() {
		result.LedgerRevoked = uc.ledger.RevokeAccess(context.WithoutCancel(ctx), cmd.UserID, cmd.AssetID)
		uc.metrics.LedgerWrite("revoke", result.LedgerRevoked)
		if !result.LedgerRevoked {
			uc.logger.Warnw("ledger revoke failed",
				"user_id", cmd.UserID, "asset_id", cmd.AssetID)
		}
	}

	uc.logger.Infow("access revoked",
		"user_id", cmd.UserID,
		"asset_id", cmd.AssetID,
		"revoked", revoked,
		"ledger_revoked", result.LedgerRevoked,
	)
	return result, nil
}
