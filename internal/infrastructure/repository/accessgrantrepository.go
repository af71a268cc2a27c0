package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/infrastructure/persistence/mappers"
	"github.com/scoutystream/scouty/internal/infrastructure/persistence/models"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// AccessGrantRepositoryImpl implements access.Repository on gorm.
type AccessGrantRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.AccessGrantMapper
	logger logger.Interface
}

// NewAccessGrantRepository creates a new access grant repository instance
func NewAccessGrantRepository(db *gorm.DB, logger logger.Interface) access.Repository {
	return &AccessGrantRepositoryImpl{
		db:     db,
		mapper: mappers.NewAccessGrantMapper(),
		logger: logger,
	}
}

// Grant upserts on (user_id, asset_id) and reloads the row so the grant
// carries the stored ID on every driver.
func (r *AccessGrantRepositoryImpl) Grant(ctx context.Context, g *access.Grant) error {
	return r.GrantBatch(ctx, []*access.Grant{g})
}

// GrantBatch upserts all grants in one transaction.
func (r *AccessGrantRepositoryImpl) GrantBatch(ctx context.Context, grants []*access.Grant) error {
	ids := make([]uint, len(grants))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, g := range grants {
			id, err := r.upsert(tx, g)
			if err != nil {
				r.logger.Errorw("failed to upsert access grant",
					"user_id", g.UserID(),
					"asset_id", g.AssetID(),
					"error", err)
				return err
			}
			ids[i] = id
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store access grant: %w", err)
	}

	for i, g := range grants {
		if g.ID() != 0 {
			continue
		}
		if err := g.SetID(ids[i]); err != nil {
			return fmt.Errorf("failed to set grant ID: %w", err)
		}
	}
	return nil
}

func (r *AccessGrantRepositoryImpl) upsert(tx *gorm.DB, g *access.Grant) (uint, error) {
	model := r.mapper.ToModel(g)
	model.ID = 0

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source", "transaction_id", "granted_at",
			"ledger_synced", "ledger_synced_at", "ledger_attempts", "updated_at",
		}),
	}).Create(model).Error; err != nil {
		return 0, err
	}

	var stored models.AccessGrantModel
	if err := tx.Select("id").
		Where("user_id = ? AND asset_id = ?", g.UserID(), g.AssetID()).
		First(&stored).Error; err != nil {
		return 0, err
	}
	return stored.ID, nil
}

func (r *AccessGrantRepositoryImpl) Exists(ctx context.Context, userID string, assetID uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccessGrantModel{}).
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check access grant: %w", err)
	}
	return count > 0, nil
}

func (r *AccessGrantRepositoryImpl) Revoke(ctx context.Context, userID string, assetID uint64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		Delete(&models.AccessGrantModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to revoke access grant",
			"user_id", userID, "asset_id", assetID, "error", result.Error)
		return false, fmt.Errorf("failed to revoke access grant: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *AccessGrantRepositoryImpl) Get(ctx context.Context, userID string, assetID uint64) (*access.Grant, error) {
	return r.first(ctx, "user_id = ? AND asset_id = ?", userID, assetID)
}

func (r *AccessGrantRepositoryImpl) GetByTransactionID(ctx context.Context, transactionID string) (*access.Grant, error) {
	return r.first(ctx, "transaction_id = ?", transactionID)
}

func (r *AccessGrantRepositoryImpl) first(ctx context.Context, query string, args ...interface{}) (*access.Grant, error) {
	var model models.AccessGrantModel
	err := r.db.WithContext(ctx).Where(query, args...).Order("id").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access grant: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *AccessGrantRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*access.Grant, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID).Order("granted_at DESC, id DESC"))
}

func (r *AccessGrantRepositoryImpl) ListByAsset(ctx context.Context, assetID uint64) ([]*access.Grant, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("asset_id = ?", assetID).Order("granted_at DESC, id DESC"))
}

func (r *AccessGrantRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccessGrantModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count access grants: %w", err)
	}
	return count, nil
}

func (r *AccessGrantRepositoryImpl) ListLedgerPending(ctx context.Context, limit, maxAttempts int) ([]*access.Grant, error) {
	query := r.db.WithContext(ctx).Where("ledger_synced = ?", false)
	if maxAttempts > 0 {
		query = query.Where("ledger_attempts < ?", maxAttempts)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.list(ctx, query.Order("granted_at ASC, id ASC"))
}

func (r *AccessGrantRepositoryImpl) UpdateLedgerState(ctx context.Context, g *access.Grant) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccessGrantModel{}).
		Where("id = ?", g.ID()).
		Updates(map[string]interface{}{
			"ledger_synced":    g.LedgerSynced(),
			"ledger_synced_at": g.LedgerSyncedAt(),
			"ledger_attempts":  g.LedgerAttempts(),
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update ledger state", "grant_id", g.ID(), "error", result.Error)
		return fmt.Errorf("failed to update ledger state: %w", result.Error)
	}
	return nil
}

func (r *AccessGrantRepositoryImpl) list(ctx context.Context, query *gorm.DB) ([]*access.Grant, error) {
	var list []models.AccessGrantModel
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list access grants: %w", err)
	}
	return r.mapper.ToEntities(list)
}
