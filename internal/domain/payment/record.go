package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin tells whether a record came from a client-submitted receipt or a
// provider webhook.
type Origin string

const (
	OriginReceipt Origin = "receipt"
	OriginWebhook Origin = "webhook"
)

// Record is a verified payment. TransactionID is the idempotency key: the
// same transaction always verifies to an equivalent record.
type Record struct {
	AssetID       uint64
	PayerID       string
	Amount        decimal.Decimal
	TransactionID string
	Provider      string
	Origin        Origin
	VerifiedAt    time.Time
}
