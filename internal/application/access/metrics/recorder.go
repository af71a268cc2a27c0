// Package metrics declares the counters the access flow reports.
package metrics

// Recorder receives access-flow events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	AccessDecision(outcome string)
	PaymentVerification(provider, outcome string)
	LedgerWrite(operation string, ok bool)
	CacheWrite(ok bool)
}

const (
	DecisionCache           = "cache"
	DecisionLedger          = "ledger"
	DecisionPaymentRequired = "payment_required"

	VerificationAccepted = "accepted"
	VerificationDenied   = "denied"
	VerificationPolicy   = "amount_rejected"
	VerificationMismatch = "asset_mismatch"
)

type nop struct{}

// NewNop returns a Recorder that drops every event.
func NewNop() Recorder { return nop{} }

func (nop) AccessDecision(string)              {}
func (nop) PaymentVerification(string, string) {}
func (nop) LedgerWrite(string, bool)           {}
func (nop) CacheWrite(bool)                    {}
