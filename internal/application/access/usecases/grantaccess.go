package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type GrantAccessCommand struct {
	UserID        string `json:"userId" validate:"notblank"`
	AssetID       uint64 `json:"assetId" validate:"gt=0"`
	TransactionID string `json:"transactionId"`
}

type GrantAccessBatchCommand struct {
	UserIDs []string `json:"userIds" validate:"min=1,max=100,dive,notblank"`
	AssetID uint64   `json:"assetId" validate:"gt=0"`
}

type GrantAccessBatchResult struct {
	Grants         []*access.Grant
	LedgerRecorded bool
}

// GrantAccessUseCase grants access administratively, without a payment.
type GrantAccessUseCase struct {
	assets asset.Repository
	writer *GrantWriter
	logger logger.Interface
}

func NewGrantAccessUseCase(assets asset.Repository, writer *GrantWriter, logger logger.Interface) *GrantAccessUseCase {
	return &GrantAccessUseCase{assets: assets, writer: writer, logger: logger}
}

func (uc *GrantAccessUseCase) Execute(ctx context.Context, cmd GrantAccessCommand) (*GrantOutcome, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	if err := uc.requireAsset(ctx, cmd.AssetID); err != nil {
		return nil, err
	}

	outcome, err := uc.writer.Write(ctx, cmd.UserID, cmd.AssetID, access.SourceAdmin, cmd.TransactionID)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("access granted by administrator",
		"user_id", cmd.UserID, "asset_id", cmd.AssetID, "ledger_recorded", outcome.LedgerRecorded)
	return outcome, nil
}

func (uc *GrantAccessUseCase) ExecuteBatch(ctx context.Context, cmd GrantAccessBatchCommand) (*GrantAccessBatchResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	if err := uc.requireAsset(ctx, cmd.AssetID); err != nil {
		return nil, err
	}

	userIDs := dedupe(cmd.UserIDs)
	grants, ok, err := uc.writer.WriteBatch(ctx, userIDs, cmd.AssetID, access.SourceAdmin)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("batch access granted by administrator",
		"asset_id", cmd.AssetID, "users", len(userIDs), "ledger_recorded", ok)
	return &GrantAccessBatchResult{Grants: grants, LedgerRecorded: ok}, nil
}

func (uc *GrantAccessUseCase) requireAsset(ctx context.Context, assetID uint64) error {
	a, err := uc.assets.GetByID(ctx, assetID)
	if err != nil {
		return fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", assetID))
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
