package paymentgateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/domain/payment"
)

// ChallengeIssuer builds the 402 challenge for one payment provider.
// Issuing is pure apart from a random nonce.
type ChallengeIssuer interface {
	IssueChallenge(assetID uint64, price decimal.Decimal) *payment.Challenge
	Provider() string
}

// Verifier turns provider proof into a canonical payment record.
//
// Both methods return nil for anything that does not verify, including
// transport failures and timeouts, which are logged by the implementation.
// The same transaction always yields an equivalent record.
type Verifier interface {
	VerifyReceipt(ctx context.Context, receipt payment.Receipt) *payment.Record
	// ProcessWebhook authenticates payload with signature when a webhook
	// secret is configured and parses it into a record.
	ProcessWebhook(ctx context.Context, payload []byte, signature string) *payment.Record
	Provider() string
}
