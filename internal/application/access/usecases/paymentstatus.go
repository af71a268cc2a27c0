package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/scoutystream/scouty/internal/application/access/dto"
	"github.com/scoutystream/scouty/internal/domain/access"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// GetPaymentStatusUseCase looks up the grant a transaction produced.
type GetPaymentStatusUseCase struct {
	grants access.Repository
	logger logger.Interface
}

func NewGetPaymentStatusUseCase(grants access.Repository, logger logger.Interface) *GetPaymentStatusUseCase {
	return &GetPaymentStatusUseCase{grants: grants, logger: logger}
}

func (uc *GetPaymentStatusUseCase) Execute(ctx context.Context, transactionID string) (*dto.GrantDTO, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, apperrors.NewValidationError("Validation failed", "transactionId is required")
	}

	grant, err := uc.grants.GetByTransactionID(ctx, transactionID)
	if err != nil {
		uc.logger.Errorw("failed to look up transaction", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}
	if grant == nil {
		return nil, apperrors.NewNotFoundError("Transaction not found")
	}
	return dto.ToGrantDTO(grant), nil
}
