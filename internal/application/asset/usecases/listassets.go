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

type ListAssetsQuery struct {
	Status string
}

type ListAssetsUseCase struct {
	assets   asset.Repository
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewListAssetsUseCase(assets asset.Repository, renderer markdown.Renderer, logger logger.Interface) *ListAssetsUseCase {
	return &ListAssetsUseCase{assets: assets, renderer: renderer, logger: logger}
}

func (uc *ListAssetsUseCase) Execute(ctx context.Context, query ListAssetsQuery) ([]*dto.AssetDTO, error) {
	var status *asset.Status
	if query.Status != "" {
		s := asset.Status(query.Status)
		if !s.IsValid() {
			return nil, apperrors.NewValidationError("Validation failed", "status must be one of [uploading processing ready failed]")
		}
		status = &s
	}

	assets, err := uc.assets.List(ctx, status)
	if err != nil {
		uc.logger.Errorw("failed to list assets", "error", err)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	out := make([]*dto.AssetDTO, 0, len(assets))
	for _, a := range assets {
		out = append(out, toRenderedDTO(a, uc.renderer, uc.logger))
	}
	return out, nil
}

func toRenderedDTO(a *asset.Asset, renderer markdown.Renderer, log logger.Interface) *dto.AssetDTO {
	d := dto.ToAssetDTO(a)
	if renderer == nil || d.Description == "" {
		return d
	}
	html, err := renderer.Render(d.Description)
	if err != nil {
		log.Warnw("failed to render asset description", "asset_id", a.ID(), "error", err)
		return d
	}
	d.DescriptionHTML = html
	return d
}
