package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/application/access/dto"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// GetUserAccessUseCase builds a user's purchase history from the local cache.
// Only grants backed by a transaction count toward the amount spent, priced
// at the asset's current price.
type GetUserAccessUseCase struct {
	grants access.Repository
	assets asset.Repository
	logger logger.Interface
}

func NewGetUserAccessUseCase(grants access.Repository, assets asset.Repository, logger logger.Interface) *GetUserAccessUseCase {
	return &GetUserAccessUseCase{grants: grants, assets: assets, logger: logger}
}

func (uc *GetUserAccessUseCase) Execute(ctx context.Context, userID string) (*dto.UserHistoryDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("Validation failed", "userId is required")
	}

	grants, err := uc.grants.ListByUser(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to list user grants", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list access: %w", err)
	}

	ids := make([]uint64, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.AssetID())
	}
	assets, err := uc.assets.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}

	sort.SliceStable(grants, func(i, j int) bool {
		return grants[i].GrantedAt().After(grants[j].GrantedAt())
	})

	spent := decimal.Zero
	purchases := make([]*dto.PurchaseDTO, 0, len(grants))
	for _, g := range grants {
		p := &dto.PurchaseDTO{
			AssetID:       g.AssetID(),
			TransactionID: g.TransactionID(),
			GrantedAt:     g.GrantedAt(),
			Source:        g.Source().String(),
		}
		if a, ok := assets[g.AssetID()]; ok {
			p.Title = a.Title()
			p.Price = a.Price().InexactFloat64()
			if g.TransactionID() != nil {
				spent = spent.Add(a.Price())
			}
		}
		purchases = append(purchases, p)
	}

	return &dto.UserHistoryDTO{
		UserID:         userID,
		Purchases:      purchases,
		TotalPurchases: len(purchases),
		TotalSpent:     spent.Round(2).InexactFloat64(),
	}, nil
}
