package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountPolicy decides whether a verified amount settles a price.
type AmountPolicy string

const (
	AmountPolicyAcceptAny          AmountPolicy = "accept_any"
	AmountPolicyRejectUnderpayment AmountPolicy = "reject_underpayment"
	AmountPolicyExact              AmountPolicy = "exact"
)

func ParseAmountPolicy(s string) (AmountPolicy, error) {
	switch p := AmountPolicy(s); p {
	case AmountPolicyAcceptAny, AmountPolicyRejectUnderpayment, AmountPolicyExact:
		return p, nil
	case "":
		return AmountPolicyAcceptAny, nil
	default:
		return "", fmt.Errorf("unknown amount policy %q", s)
	}
}

// Settles reports whether paid satisfies price under the policy. Amounts are
// compared at cent precision.
func (p AmountPolicy) Settles(paid, price decimal.Decimal) bool {
	paid = paid.Round(2)
	price = price.Round(2)
	switch p {
	case AmountPolicyRejectUnderpayment:
		return paid.GreaterThanOrEqual(price)
	case AmountPolicyExact:
		return paid.Equal(price)
	default:
		return true
	}
}
