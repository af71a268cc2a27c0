package payment

import "github.com/shopspring/decimal"

// Challenge is the 402 response for an unpaid asset. It carries no server
// side state and can be rebuilt from (asset, price, provider) at any time.
type Challenge struct {
	AssetID  uint64
	Price    decimal.Decimal
	Currency string
	Headers  map[string]string
}
