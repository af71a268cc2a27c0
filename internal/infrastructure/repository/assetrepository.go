package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/infrastructure/persistence/mappers"
	"github.com/scoutystream/scouty/internal/infrastructure/persistence/models"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// AssetRepositoryImpl implements asset.Repository on gorm.
type AssetRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.AssetMapper
	logger logger.Interface
}

// NewAssetRepository creates a new asset repository instance
func NewAssetRepository(db *gorm.DB, logger logger.Interface) asset.Repository {
	return &AssetRepositoryImpl{
		db:     db,
		mapper: mappers.NewAssetMapper(),
		logger: logger,
	}
}

func (r *AssetRepositoryImpl) Create(ctx context.Context, a *asset.Asset) error {
	model, err := r.mapper.ToModel(a)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create asset", "title", a.Title(), "error", err)
		return fmt.Errorf("failed to create asset: %w", err)
	}
	if a.ID() == 0 {
		if err := a.SetID(model.ID); err != nil {
			return fmt.Errorf("failed to set asset ID: %w", err)
		}
	}
	r.logger.Infow("asset created", "id", model.ID, "status", model.Status)
	return nil
}

func (r *AssetRepositoryImpl) Update(ctx context.Context, a *asset.Asset) error {
	model, err := r.mapper.ToModel(a)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&models.AssetModel{}).Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update asset", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return asset.ErrAssetNotFound
	}
	return nil
}

func (r *AssetRepositoryImpl) GetByID(ctx context.Context, id uint64) (*asset.Asset, error) {
	var model models.AssetModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *AssetRepositoryImpl) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*asset.Asset, error) {
	out := make(map[uint64]*asset.Asset, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var list []models.AssetModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to get assets: %w", err)
	}
	for i := range list {
		a, err := r.mapper.ToEntity(&list[i])
		if err != nil {
			return nil, err
		}
		out[a.ID()] = a
	}
	return out, nil
}

func (r *AssetRepositoryImpl) List(ctx context.Context, status *asset.Status) ([]*asset.Asset, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if status != nil {
		query = query.Where("status = ?", status.String())
	}

	var list []models.AssetModel
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	out := make([]*asset.Asset, 0, len(list))
	for i := range list {
		a, err := r.mapper.ToEntity(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AssetRepositoryImpl) CountByStatus(ctx context.Context) (map[asset.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.AssetModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	out := make(map[asset.Status]int64, len(rows))
	for _, row := range rows {
		out[asset.Status(row.Status)] = row.Count
	}
	return out, nil
}
