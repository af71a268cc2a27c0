package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/domain/payment"
)

var (
	errInvalidSignature = errors.New("invalid webhook signature")
	errMissingTxID      = errors.New("webhook payload has no transaction id")
)

// verifySignature checks an HMAC-SHA256 hex signature over the raw body.
// A "sha256=" prefix is accepted.
func verifySignature(secret string, payload []byte, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the signature a provider would send for payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// flexValue accepts JSON strings and numbers.
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexValue(n.String())
	return nil
}

type webhookPayload struct {
	ID            flexValue `json:"id"`
	TransactionID flexValue `json:"transaction_id"`
	Amount        flexValue `json:"amount"`
	Total         flexValue `json:"total"`
	VideoID       flexValue `json:"video_id"`
	AssetID       flexValue `json:"asset_id"`
	UserAddress   string    `json:"user_address"`
	Metadata      struct {
		VideoID flexValue `json:"video_id"`
		AssetID flexValue `json:"asset_id"`
	} `json:"metadata"`
	Customer struct {
		Address string `json:"address"`
	} `json:"customer"`
}

func firstNonEmpty[T ~string](values ...T) T {
	for _, v := range values {
		if strings.TrimSpace(string(v)) != "" {
			return v
		}
	}
	return ""
}

// parseWebhook maps a provider notification onto a record. Field names
// follow the provider payload with fallbacks for flattened variants.
func parseWebhook(provider string, raw []byte) (*payment.Record, error) {
	var p webhookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid webhook json: %w", err)
	}

	txID := string(firstNonEmpty(p.ID, p.TransactionID))
	if txID == "" {
		return nil, errMissingTxID
	}

	record := &payment.Record{
		PayerID:       firstNonEmpty(p.Customer.Address, p.UserAddress),
		TransactionID: txID,
		Provider:      provider,
		Origin:        payment.OriginWebhook,
		VerifiedAt:    time.Now().UTC(),
	}

	if amount := firstNonEmpty(p.Amount, p.Total); amount != "" {
		d, err := decimal.NewFromString(string(amount))
		if err != nil {
			return nil, fmt.Errorf("invalid webhook amount %q: %w", amount, err)
		}
		record.Amount = d
	}

	if assetID := firstNonEmpty(p.Metadata.VideoID, p.Metadata.AssetID, p.VideoID, p.AssetID); assetID != "" {
		id, err := strconv.ParseUint(string(assetID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook asset id %q: %w", assetID, err)
		}
		record.AssetID = id
	}

	return record, nil
}
