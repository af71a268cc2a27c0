package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/access/metrics"
	"github.com/scoutystream/scouty/internal/application/payment/paymentgateway"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/domain/payment"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

type HandleWebhookCommand struct {
	Payload   []byte
	Signature string
}

type HandleWebhookResult struct {
	Record *payment.Record
	// AlreadyGranted is true when the grant existed and nothing was written.
	AlreadyGranted bool
	Outcome        *GrantOutcome
}

// HandleWebhookUseCase records access from provider notifications. Providers
// retry deliveries, so an existing grant short-circuits to success without
// touching the ledger.
type HandleWebhookUseCase struct {
	grants   access.Repository
	assets   asset.Repository
	verifier paymentgateway.Verifier
	writer   *GrantWriter
	policy   payment.AmountPolicy
	metrics  metrics.Recorder
	logger   logger.Interface
}

func NewHandleWebhookUseCase(
	grants access.Repository,
	assets asset.Repository,
	verifier paymentgateway.Verifier,
	writer *GrantWriter,
	policy payment.AmountPolicy,
	recorder metrics.Recorder,
	logger logger.Interface,
) *HandleWebhookUseCase {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	return &HandleWebhookUseCase{
		grants:   grants,
		assets:   assets,
		verifier: verifier,
		writer:   writer,
		policy:   policy,
		metrics:  recorder,
		logger:   logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookCommand) (*HandleWebhookResult, error) {
	if len(cmd.Payload) == 0 {
		return nil, apperrors.NewValidationError("Webhook payload is empty")
	}

	record := uc.verifier.ProcessWebhook(ctx, cmd.Payload, cmd.Signature)
	if record == nil {
		uc.metrics.PaymentVerification(uc.verifier.Provider(), metrics.VerificationDenied)
		uc.logger.Warnw("webhook rejected", "provider", uc.verifier.Provider())
		return nil, apperrors.NewPaymentDeniedError()
	}
	if record.PayerID == "" || record.AssetID == 0 {
		uc.logger.Warnw("webhook missing payer or asset",
			"transaction_id", record.TransactionID, "asset_id", record.AssetID)
		return nil, apperrors.NewValidationError("Invalid webhook payload", "payer and asset are required")
	}

	exists, err := uc.grants.Exists(ctx, record.PayerID, record.AssetID)
	if err != nil {
		uc.logger.Errorw("failed to query access cache for webhook",
			"transaction_id", record.TransactionID, "error", err)
		return nil, fmt.Errorf("failed to check access: %w", err)
	}
	if exists {
		uc.logger.Infow("webhook for existing grant ignored",
			"transaction_id", record.TransactionID,
			"user_id", record.PayerID,
			"asset_id", record.AssetID,
		)
		return &HandleWebhookResult{Record: record, AlreadyGranted: true}, nil
	}

	a, err := uc.assets.GetByID(ctx, record.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", record.AssetID))
	}

	if !uc.policy.Settles(record.Amount, a.Price()) {
		uc.metrics.PaymentVerification(uc.verifier.Provider(), metrics.VerificationPolicy)
		uc.logger.Warnw("webhook amount does not settle price",
			"transaction_id", record.TransactionID,
			"amount", record.Amount.String(),
			"price", a.Price().String(),
		)
		return nil, apperrors.NewPaymentDeniedError()
	}

	outcome, err := uc.writer.Write(ctx, record.PayerID, record.AssetID, access.SourceWebhook, record.TransactionID)
	if err != nil {
		if apperrors.IsPaymentDeniedError(err) {
			uc.metrics.PaymentVerification(uc.verifier.Provider(), metrics.VerificationDenied)
		}
		return nil, err
	}
	uc.metrics.PaymentVerification(uc.verifier.Provider(), metrics.VerificationAccepted)

	uc.logger.Infow("webhook payment recorded",
		"transaction_id", record.TransactionID,
		"user_id", record.PayerID,
		"asset_id", record.AssetID,
		"ledger_recorded", outcome.LedgerRecorded,
	)

	return &HandleWebhookResult{Record: record, AlreadyGranted: outcome.AlreadyGranted, Outcome: outcome}, nil
}
