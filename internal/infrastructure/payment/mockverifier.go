package payment

import (
	"context"
	"time"

	"github.com/scoutystream/scouty/internal/domain/payment"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// MockVerifier accepts every non-empty receipt. The receipt token is the
// transaction id and the amount is the submitted amount, or the price when
// none was given.
type MockVerifier struct {
	webhookSecret string
	logger        logger.Interface
}

func NewMockVerifier(webhookSecret string, log logger.Interface) *MockVerifier {
	return &MockVerifier{webhookSecret: webhookSecret, logger: log.Named("mock_payments")}
}

func (v *MockVerifier) Provider() string { return ProviderMock }

func (v *MockVerifier) VerifyReceipt(ctx context.Context, receipt payment.Receipt) *payment.Record {
	if receipt.IsEmpty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return nil
	}

	amount := receipt.Price
	if receipt.Amount != nil {
		amount = *receipt.Amount
	}

	v.logger.Debugw("mock receipt accepted", "asset_id", receipt.AssetID, "transaction_id", receipt.Token)
	return &payment.Record{
		AssetID:       receipt.AssetID,
		PayerID:       receipt.PayerID,
		Amount:        amount,
		TransactionID: receipt.Token,
		Provider:      ProviderMock,
		Origin:        payment.OriginReceipt,
		VerifiedAt:    time.Now().UTC(),
	}
}

func (v *MockVerifier) ProcessWebhook(ctx context.Context, payload []byte, signature string) *payment.Record {
	return processWebhook(v.logger, ProviderMock, v.webhookSecret, payload, signature)
}
