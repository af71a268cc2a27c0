package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/asset/dto"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/services/markdown"
)

// AccessChecker answers whether a user may stream an asset.
type AccessChecker interface {
	HasAccess(ctx context.Context, userID string, assetID uint64) (bool, error)
}

type GetAssetQuery struct {
	AssetID uint64
	// UserID, when set, adds hasAccess to the result.
	UserID string
}

type GetAssetUseCase struct {
	assets   asset.Repository
	checker  AccessChecker
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewGetAssetUseCase(assets asset.Repository, checker AccessChecker, renderer markdown.Renderer, logger logger.Interface) *GetAssetUseCase {
	return &GetAssetUseCase{assets: assets, checker: checker, renderer: renderer, logger: logger}
}

func (uc *GetAssetUseCase) Execute(ctx context.Context, query GetAssetQuery) (*dto.AssetDTO, error) {
	a, err := uc.assets.GetByID(ctx, query.AssetID)
	if err != nil {
		uc.logger.Errorw("failed to load asset", "asset_id", query.AssetID, "error", err)
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", query.AssetID))
	}

	d := toRenderedDTO(a, uc.renderer, uc.logger)
	if query.UserID != "" && uc.checker != nil {
		ok, err := uc.checker.HasAccess(ctx, query.UserID, a.ID())
		if err != nil {
			return nil, err
		}
		d.HasAccess = &ok
	}
	return d, nil
}
