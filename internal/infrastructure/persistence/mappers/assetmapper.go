package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/infrastructure/persistence/models"
)

// AssetMapper converts between catalog assets and their persistence model.
type AssetMapper interface {
	ToEntity(model *models.AssetModel) (*asset.Asset, error)
	ToModel(entity *asset.Asset) (*models.AssetModel, error)
}

type assetMapper struct{}

func NewAssetMapper() AssetMapper {
	return &assetMapper{}
}

func (m *assetMapper) ToEntity(model *models.AssetModel) (*asset.Asset, error) {
	if model == nil {
		return nil, nil
	}

	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for asset %d: %w", model.Price, model.ID, err)
	}

	var tags []string
	if len(model.Tags) > 0 {
		if err := json.Unmarshal(model.Tags, &tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags for asset %d: %w", model.ID, err)
		}
	}

	entity, err := asset.ReconstructAsset(
		model.ID,
		model.Title,
		model.Description,
		price,
		asset.Status(model.Status),
		asset.Provider(model.Provider),
		model.YouTubeID,
		tags,
		model.FileName,
		model.FileSize,
		model.MimeType,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct asset: %w", err)
	}
	return entity, nil
}

func (m *assetMapper) ToModel(entity *asset.Asset) (*models.AssetModel, error) {
	if entity == nil {
		return nil, nil
	}

	tags := entity.Tags()
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	return &models.AssetModel{
		ID:          entity.ID(),
		Title:       entity.Title(),
		Description: entity.Description(),
		Price:       entity.Price().StringFixed(2),
		Status:      entity.Status().String(),
		Provider:    string(entity.Provider()),
		YouTubeID:   entity.YouTubeID(),
		Tags:        datatypes.JSON(raw),
		FileName:    entity.FileName(),
		FileSize:    entity.FileSize(),
		MimeType:    entity.MimeType(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}, nil
}
