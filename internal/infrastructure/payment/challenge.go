// Package payment holds the payment provider adapters: challenge issuers,
// receipt verifiers and webhook parsing.
package payment

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/domain/payment"
)

const (
	ProviderMock = "mock"
	ProviderX402 = "x402"

	HeaderWWWAuthenticate   = "WWW-Authenticate"
	HeaderL402Challenge     = "L402-Challenge"
	HeaderL402AcceptPayment = "L402-Accept-Payment"
	HeaderL402Amount        = "L402-Amount"
	HeaderL402Currency      = "L402-Currency"

	HeaderPaymentRequired = "X-Payment-Required"
	HeaderPaymentAmount   = "X-Payment-Amount"
	HeaderPaymentCurrency = "X-Payment-Currency"
	HeaderVideoID         = "X-Video-Id"
)

// X402ChallengeIssuer renders L402 challenges.
type X402ChallengeIssuer struct {
	realm    string
	currency string
	now      func() time.Time
}

func NewX402ChallengeIssuer(realm, currency string) *X402ChallengeIssuer {
	return &X402ChallengeIssuer{realm: realm, currency: currency, now: time.Now}
}

func (i *X402ChallengeIssuer) IssueChallenge(assetID uint64, price decimal.Decimal) *payment.Challenge {
	amount := price.StringFixed(2)
	return &payment.Challenge{
		AssetID:  assetID,
		Price:    price,
		Currency: i.currency,
		Headers: map[string]string{
			HeaderWWWAuthenticate:   fmt.Sprintf(`L402 realm="%s", charset="UTF-8"`, i.realm),
			HeaderL402Challenge:     i.token(assetID, price),
			HeaderL402AcceptPayment: "application/json",
			HeaderL402Amount:        amount,
			HeaderL402Currency:      i.currency,
		},
	}
}

func (i *X402ChallengeIssuer) Provider() string { return ProviderX402 }

type challengeToken struct {
	VideoID   uint64 `json:"video_id"`
	AssetID   uint64 `json:"asset_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
}

func (i *X402ChallengeIssuer) token(assetID uint64, price decimal.Decimal) string {
	raw, _ := json.Marshal(challengeToken{
		VideoID:   assetID,
		AssetID:   assetID,
		Amount:    price.StringFixed(2),
		Currency:  i.currency,
		Timestamp: i.now().UnixMilli(),
		Nonce:     uuid.NewString(),
	})
	return base64.StdEncoding.EncodeToString(raw)
}

// MockChallengeIssuer renders the development headers.
type MockChallengeIssuer struct {
	currency string
}

func NewMockChallengeIssuer(currency string) *MockChallengeIssuer {
	return &MockChallengeIssuer{currency: currency}
}

func (i *MockChallengeIssuer) IssueChallenge(assetID uint64, price decimal.Decimal) *payment.Challenge {
	return &payment.Challenge{
		AssetID:  assetID,
		Price:    price,
		Currency: i.currency,
		Headers: map[string]string{
			HeaderPaymentRequired: "true",
			HeaderPaymentAmount:   price.StringFixed(2),
			HeaderPaymentCurrency: i.currency,
			HeaderVideoID:         strconv.FormatUint(assetID, 10),
		},
	}
}

func (i *MockChallengeIssuer) Provider() string { return ProviderMock }
