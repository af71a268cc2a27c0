package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Receipt is what a client submits after paying out of band. Token is the
// opaque proof; the remaining fields are hints the verifier may use when the
// provider does not return them.
type Receipt struct {
	Token   string
	AssetID uint64
	PayerID string
	Amount  *decimal.Decimal
	Price   decimal.Decimal
}

// IsEmpty reports whether the receipt carries no proof at all.
func (r Receipt) IsEmpty() bool {
	return strings.TrimSpace(r.Token) == ""
}
