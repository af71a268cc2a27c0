package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/asset/dto"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
)

// TaskLookup reports whether an asset has processing in flight.
type TaskLookup interface {
	IsProcessing(assetID uint64) bool
}

type GetUploadStatusUseCase struct {
	assets asset.Repository
	tasks  TaskLookup
}

func NewGetUploadStatusUseCase(assets asset.Repository, tasks TaskLookup) *GetUploadStatusUseCase {
	return &GetUploadStatusUseCase{assets: assets, tasks: tasks}
}

func (uc *GetUploadStatusUseCase) Execute(ctx context.Context, assetID uint64) (*dto.UploadStatusDTO, error) {
	a, err := uc.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", assetID))
	}
	return &dto.UploadStatusDTO{
		AssetID:    a.ID(),
		Status:     a.Status().String(),
		Processing: uc.tasks != nil && uc.tasks.IsProcessing(a.ID()),
		UpdatedAt:  a.UpdatedAt(),
	}, nil
}
