package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/access/dto"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

type GetAssetAccessUseCase struct {
	grants access.Repository
	assets asset.Repository
	logger logger.Interface
}

func NewGetAssetAccessUseCase(grants access.Repository, assets asset.Repository, logger logger.Interface) *GetAssetAccessUseCase {
	return &GetAssetAccessUseCase{grants: grants, assets: assets, logger: logger}
}

func (uc *GetAssetAccessUseCase) Execute(ctx context.Context, assetID uint64) ([]*dto.GrantDTO, error) {
	a, err := uc.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", assetID))
	}

	grants, err := uc.grants.ListByAsset(ctx, assetID)
	if err != nil {
		uc.logger.Errorw("failed to list asset grants", "asset_id", assetID, "error", err)
		return nil, fmt.Errorf("failed to list access: %w", err)
	}
	return dto.ToGrantDTOs(grants), nil
}
