package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/domain/payment"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// X402Verifier verifies receipts against an x402 facilitator over HTTP and
// authenticates provider webhooks with a shared HMAC secret.
type X402Verifier struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	client        *http.Client
	logger        logger.Interface
}

func NewX402Verifier(baseURL, apiKey, webhookSecret string, client *http.Client, log logger.Interface) *X402Verifier {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &X402Verifier{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		client:        client,
		logger:        log.Named("x402"),
	}
}

func (v *X402Verifier) Provider() string { return ProviderX402 }

type verifyRequest struct {
	Receipt string `json:"receipt"`
	AssetID uint64 `json:"assetId"`
	Payer   string `json:"payer,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Price   string `json:"price"`
}

type verifyResponse struct {
	Valid         bool      `json:"valid"`
	TransactionID string    `json:"transactionId"`
	Payer         string    `json:"payer"`
	Amount        flexValue `json:"amount"`
	AssetID       uint64    `json:"assetId"`
	Reason        string    `json:"reason"`
}

func (v *X402Verifier) VerifyReceipt(ctx context.Context, receipt payment.Receipt) *payment.Record {
	if receipt.IsEmpty() {
		return nil
	}
	if v.baseURL == "" {
		v.logger.Errorw("x402 facilitator url is not configured")
		return nil
	}

	body := verifyRequest{
		Receipt: receipt.Token,
		AssetID: receipt.AssetID,
		Payer:   receipt.PayerID,
		Price:   receipt.Price.StringFixed(2),
	}
	if receipt.Amount != nil {
		body.Amount = receipt.Amount.String()
	}

	resp, err := v.post(ctx, "/verify", body)
	if err != nil {
		v.logger.Warnw("x402 verification request failed", "asset_id", receipt.AssetID, "error", err)
		return nil
	}
	if !resp.Valid {
		v.logger.Infow("x402 receipt rejected by facilitator", "asset_id", receipt.AssetID, "reason", resp.Reason)
		return nil
	}

	record := &payment.Record{
		AssetID:       resp.AssetID,
		PayerID:       resp.Payer,
		TransactionID: resp.TransactionID,
		Provider:      ProviderX402,
		Origin:        payment.OriginReceipt,
		VerifiedAt:    time.Now().UTC(),
	}
	if record.TransactionID == "" {
		// the receipt itself identifies the settlement
		record.TransactionID = receipt.Token
	}
	switch {
	case resp.Amount != "":
		amount, err := decimal.NewFromString(string(resp.Amount))
		if err != nil {
			v.logger.Warnw("x402 facilitator returned an invalid amount", "amount", resp.Amount, "error", err)
			return nil
		}
		record.Amount = amount
	case receipt.Amount != nil:
		record.Amount = *receipt.Amount
	}

	return record
}

func (v *X402Verifier) post(ctx context.Context, path string, payload interface{}) (*verifyResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("X-API-Key", v.apiKey)
	}

	res, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read facilitator response: %w", err)
	}
	if res.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("facilitator returned status %d", res.StatusCode)
	}

	var out verifyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid facilitator response (status %d): %w", res.StatusCode, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		out.Valid = false
	}
	return &out, nil
}

func (v *X402Verifier) ProcessWebhook(ctx context.Context, payload []byte, signature string) *payment.Record {
	return processWebhook(v.logger, ProviderX402, v.webhookSecret, payload, signature)
}

// processWebhook authenticates and parses a webhook. Without a secret the
// signature is not checked.
func processWebhook(log logger.Interface, provider, secret string, payload []byte, signature string) *payment.Record {
	if secret == "" {
		log.Warnw("webhook signature verification is not configured, accepting unsigned payload")
	} else if !verifySignature(secret, payload, signature) {
		log.Warnw("webhook rejected", "error", errInvalidSignature)
		return nil
	}

	record, err := parseWebhook(provider, payload)
	if err != nil {
		log.Warnw("webhook payload rejected", "error", err)
		return nil
	}
	return record
}
