package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/application/access/metrics"
	"github.com/scoutystream/scouty/internal/application/payment/paymentgateway"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/domain/payment"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type VerifyPaymentCommand struct {
	AssetID uint64 `json:"assetId" validate:"gt=0"`
	Receipt string `json:"receipt" validate:"notblank"`
	// UserID is used when the provider does not identify the payer.
	UserID string           `json:"userId"`
	Amount *decimal.Decimal `json:"amount"`
}

type VerifyPaymentResult struct {
	Record  *payment.Record
	UserID  string
	Outcome *GrantOutcome
}

// VerifyPaymentUseCase verifies a submitted receipt and, when it settles the
// asset price, records access. A receipt that does not verify changes nothing.
type VerifyPaymentUseCase struct {
	assets        asset.Repository
	verifier      paymentgateway.Verifier
	writer        *GrantWriter
	policy        payment.AmountPolicy
	verifyTimeout time.Duration
	metrics       metrics.Recorder
	logger        logger.Interface
}

func NewVerifyPaymentUseCase(
	assets asset.Repository,
	verifier paymentgateway.Verifier,
	writer *GrantWriter,
	policy payment.AmountPolicy,
	verifyTimeout time.Duration,
	recorder metrics.Recorder,
	logger logger.Interface,
) *VerifyPaymentUseCase {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	return &VerifyPaymentUseCase{
		assets:        assets,
		verifier:      verifier,
		writer:        writer,
		policy:        policy,
		verifyTimeout: verifyTimeout,
		metrics:       recorder,
		logger:        logger,
	}
}

func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, cmd VerifyPaymentCommand) (*VerifyPaymentResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	a, err := uc.assets.GetByID(ctx, cmd.AssetID)
	if err != nil {
		uc.logger.Errorw("failed to load asset", "asset_id", cmd.AssetID, "error", err)
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", cmd.AssetID))
	}

	verifyCtx := ctx
	if uc.verifyTimeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, uc.verifyTimeout)
		defer cancel()
	}

	record := uc.verifier.VerifyReceipt(verifyCtx, payment.Receipt{
		Token:   cmd.Receipt,
		AssetID: cmd.AssetID,
		PayerID: cmd.UserID,
		Amount:  cmd.Amount,
		Price:   a.Price(),
	})
	if record == nil {
		uc.deny(metrics.VerificationDenied, "receipt did not verify", cmd.AssetID, cmd.UserID)
		return nil, apperrors.NewPaymentDeniedError()
	}

	if record.AssetID != 0 && record.AssetID != cmd.AssetID {
		uc.deny(metrics.VerificationMismatch, "receipt is for another asset", cmd.AssetID, cmd.UserID,
			"receipt_asset_id", record.AssetID)
		return nil, apperrors.NewPaymentDeniedError()
	}

	userID := record.PayerID
	if userID == "" {
		userID = cmd.UserID
	}
	if userID == "" {
		return nil, apperrors.NewValidationError("Validation failed", "userId is required when the receipt does not identify the payer")
	}
	if cmd.UserID != "" && cmd.UserID != userID {
		uc.logger.Warnw("receipt payer differs from requesting user, granting to payer",
			"asset_id", cmd.AssetID, "payer", userID, "requested_by", cmd.UserID)
	}

	if !uc.policy.Settles(record.Amount, a.Price()) {
		uc.deny(metrics.VerificationPolicy, "amount does not settle price", cmd.AssetID, userID,
			"amount", record.Amount.String(), "price", a.Price().String(), "policy", string(uc.policy))
		return nil, apperrors.NewPaymentDeniedError()
	}

	outcome, err := uc.writer.Write(ctx, userID, cmd.AssetID, access.SourcePayment, record.TransactionID)
	if err != nil {
		if apperrors.IsPaymentDeniedError(err) {
			uc.deny(metrics.VerificationDenied, "transaction already settled another grant", cmd.AssetID, userID,
				"transaction_id", record.TransactionID)
		}
		return nil, err
	}
	uc.metrics.PaymentVerification(uc.verifier.Provider(), metrics.VerificationAccepted)

	uc.logger.Infow("payment verified and access granted",
		"asset_id", cmd.AssetID,
		"user_id", userID,
		"transaction_id", record.TransactionID,
		"amount", record.Amount.String(),
		"ledger_recorded", outcome.LedgerRecorded,
	)

	return &VerifyPaymentResult{Record: record, UserID: userID, Outcome: outcome}, nil
}

func (uc *VerifyPaymentUseCase) deny(outcome, reason string, assetID uint64, userID string, kv ...interface{}) {
	uc.metrics.PaymentVerification(uc.verifier.Provider(), outcome)
	fields := append([]interface{}{"asset_id", assetID, "user_id", userID, "reason", reason}, kv...)
	uc.logger.Warnw("payment verification denied", fields...)
}
