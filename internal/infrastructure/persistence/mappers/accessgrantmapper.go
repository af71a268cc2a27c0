package mappers

import (
	"fmt"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/infrastructure/persistence/models"
)

// AccessGrantMapper converts between access grants and their persistence model.
type AccessGrantMapper interface {
	ToEntity(model *models.AccessGrantModel) (*access.Grant, error)
	ToModel(entity *access.Grant) *models.AccessGrantModel
	ToEntities(models []models.AccessGrantModel) ([]*access.Grant, error)
}

type accessGrantMapper struct{}

func NewAccessGrantMapper() AccessGrantMapper {
	return &accessGrantMapper{}
}

func (m *accessGrantMapper) ToEntity(model *models.AccessGrantModel) (*access.Grant, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := access.ReconstructGrant(
		model.ID,
		model.UserID,
		model.AssetID,
		access.Source(model.Source),
		model.TransactionID,
		model.GrantedAt,
		model.LedgerSynced,
		model.LedgerSyncedAt,
		model.LedgerAttempts,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct access grant: %w", err)
	}
	return entity, nil
}

func (m *accessGrantMapper) ToModel(entity *access.Grant) *models.AccessGrantModel {
	if entity == nil {
		return nil
	}
	return &models.AccessGrantModel{
		ID:             entity.ID(),
		UserID:         entity.UserID(),
		AssetID:        entity.AssetID(),
		Source:         entity.Source().String(),
		TransactionID:  entity.TransactionID(),
		GrantedAt:      entity.GrantedAt(),
		LedgerSynced:   entity.LedgerSynced(),
		LedgerSyncedAt: entity.LedgerSyncedAt(),
		LedgerAttempts: entity.LedgerAttempts(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}
}

func (m *accessGrantMapper) ToEntities(list []models.AccessGrantModel) ([]*access.Grant, error) {
	out := make([]*access.Grant, 0, len(list))
	for i := range list {
		entity, err := m.ToEntity(&list[i])
		if err != nil {
			return nil, fmt.Errorf("failed to map grant %d: %w", list[i].ID, err)
		}
		out = append(out, entity)
	}
	return out, nil
}
