package usecases

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type DevPurchaseCommand struct {
	AssetID uint64 `json:"assetId" validate:"gt=0"`
	UserID  string `json:"userId" validate:"notblank"`
}

type DevPurchaseResult struct {
	Asset         *asset.Asset
	TransactionID string
	Outcome       *GrantOutcome
}

// DevPurchaseUseCase simulates a completed payment. It is only routed when
// the mock payment provider is active.
type DevPurchaseUseCase struct {
	assets asset.Repository
	writer *GrantWriter
	logger logger.Interface
}

func NewDevPurchaseUseCase(assets asset.Repository, writer *GrantWriter, logger logger.Interface) *DevPurchaseUseCase {
	return &DevPurchaseUseCase{assets: assets, writer: writer, logger: logger}
}

func (uc *DevPurchaseUseCase) Execute(ctx context.Context, cmd DevPurchaseCommand) (*DevPurchaseResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	a, err := uc.assets.GetByID(ctx, cmd.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", cmd.AssetID))
	}
	if !a.IsReady() {
		return nil, apperrors.NewAssetNotReadyError(a.Status().String())
	}

	txID := "mock_" + ulid.Make().String()
	outcome, err := uc.writer.Write(ctx, cmd.UserID, cmd.AssetID, access.SourceDev, txID)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("mock purchase completed",
		"asset_id", cmd.AssetID, "user_id", cmd.UserID, "transaction_id", txID)
	return &DevPurchaseResult{Asset: a, TransactionID: txID, Outcome: outcome}, nil
}
