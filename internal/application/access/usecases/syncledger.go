package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// SyncLedgerUseCase retries ledger writes for grants that only reached the
// local cache. It returns how many grants it confirmed.
type SyncLedgerUseCase struct {
	grants      access.Repository
	ledger      ledger.Ledger
	writer      *GrantWriter
	batchSize   int
	maxAttempts int
	logger      logger.Interface
}

func NewSyncLedgerUseCase(
	grants access.Repository,
	ledgerClient ledger.Ledger,
	writer *GrantWriter,
	batchSize, maxAttempts int,
	logger logger.Interface,
) *SyncLedgerUseCase {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncLedgerUseCase{
		grants:      grants,
		ledger:      ledgerClient,
		writer:      writer,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (uc *SyncLedgerUseCase) Execute(ctx context.Context) (int, error) {
	if !uc.ledger.IsConfigured() {
		return 0, nil
	}

	pending, err := uc.grants.ListLedgerPending(ctx, uc.batchSize, uc.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to list ledger-pending grants: %w", err)
	}

	synced := 0
	for _, grant := range pending {
		if ctx.Err() != nil {
			break
		}
		if uc.writer.SyncGrant(ctx, grant) {
			synced++
		}
	}

	if len(pending) > 0 {
		uc.logger.Infow("ledger reconciliation pass finished",
			"pending", len(pending), "synced", synced)
	}
	return synced, nil
}
