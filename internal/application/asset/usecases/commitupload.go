package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/application/asset/dto"
	"github.com/scoutystream/scouty/internal/application/asset/processing"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type CommitUploadCommand struct {
	AssetID     uint64   `json:"assetId" validate:"gt=0"`
	Title       string   `json:"title" validate:"notblank,max=200"`
	Description string   `json:"description" validate:"max=1000"`
	Tags        []string `json:"tags" validate:"max=10,dive,notblank,max=50"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,lte=1000"`
}

// ProcessingStarter starts post-upload processing for an asset.
type ProcessingStarter interface {
	Start(a *asset.Asset) (*processing.Task, error)
}

// CommitUploadUseCase publishes the metadata of an uploaded asset and starts
// processing. The returned task can be awaited or cancelled.
type CommitUploadUseCase struct {
	assets asset.Repository
	runner ProcessingStarter
	logger logger.Interface
}

func NewCommitUploadUseCase(assets asset.Repository, runner ProcessingStarter, logger logger.Interface) *CommitUploadUseCase {
	return &CommitUploadUseCase{assets: assets, runner: runner, logger: logger}
}

func (uc *CommitUploadUseCase) Execute(ctx context.Context, cmd CommitUploadCommand) (*dto.AssetDTO, *processing.Task, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, nil, err
	}

	a, err := uc.assets.GetByID(ctx, cmd.AssetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", cmd.AssetID))
	}

	price := a.Price()
	if cmd.Price != nil {
		price = decimal.NewFromFloat(*cmd.Price).Round(2)
	}

	if err := a.Commit(cmd.Title, cmd.Description, price, cmd.Tags); err != nil {
		return nil, nil, apperrors.NewConflictError("Upload cannot be committed", err.Error())
	}
	if err := uc.assets.Update(ctx, a); err != nil {
		uc.logger.Errorw("failed to store committed asset", "asset_id", a.ID(), "error", err)
		return nil, nil, fmt.Errorf("failed to update asset: %w", err)
	}

	task, err := uc.runner.Start(a)
	if err != nil {
		if errors.Is(err, processing.ErrAlreadyRunning) {
			return nil, nil, apperrors.NewConflictError("Asset is already being processed")
		}
		return nil, nil, fmt.Errorf("failed to start processing: %w", err)
	}

	uc.logger.Infow("upload committed, processing started", "asset_id", a.ID(), "title", a.Title())
	return dto.ToAssetDTO(a), task, nil
}
