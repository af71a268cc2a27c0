package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessdto "github.com/scoutystream/scouty/internal/application/access/dto"
	accessuc "github.com/scoutystream/scouty/internal/application/access/usecases"
	"github.com/scoutystream/scouty/internal/domain/payment"
	"github.com/scoutystream/scouty/internal/interfaces/http/handlers/testutil"
	"github.com/scoutystream/scouty/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockVerifyPaymentUC struct {
	result *accessuc.VerifyPaymentResult
	err    error
	cmd    accessuc.VerifyPaymentCommand
	calls  int
}

func (m *mockVerifyPaymentUC) Execute(ctx context.Context, cmd accessuc.VerifyPaymentCommand) (*accessuc.VerifyPaymentResult, error) {
	m.cmd = cmd
	m.calls++
	return m.result, m.err
}

type mockHandleWebhookUC struct {
	result *accessuc.HandleWebhookResult
	err    error
	cmd    accessuc.HandleWebhookCommand
}

func (m *mockHandleWebhookUC) Execute(ctx context.Context, cmd accessuc.HandleWebhookCommand) (*accessuc.HandleWebhookResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockPaymentStatusUC struct {
	result *accessdto.GrantDTO
	err    error
	txID   string
}

func (m *mockPaymentStatusUC) Execute(ctx context.Context, transactionID string) (*accessdto.GrantDTO, error) {
	m.txID = transactionID
	return m.result, m.err
}

type mockUserAccessUC struct {
	result *accessdto.UserHistoryDTO
	err    error
}

func (m *mockUserAccessUC) Execute(ctx context.Context, userID string) (*accessdto.UserHistoryDTO, error) {
	return m.result, m.err
}

type paymentHandlerMocks struct {
	verify  *mockVerifyPaymentUC
	webhook *mockHandleWebhookUC
	status  *mockPaymentStatusUC
	history *mockUserAccessUC
}

func newTestPaymentHandler() (*PaymentHandler, *paymentHandlerMocks) {
	m := &paymentHandlerMocks{
		verify:  &mockVerifyPaymentUC{},
		webhook: &mockHandleWebhookUC{},
		status:  &mockPaymentStatusUC{},
		history: &mockUserAccessUC{},
	}
	return NewPaymentHandler(m.verify, m.webhook, m.status, m.history, testutil.NewMockLogger()), m
}

func verifiedRecord() *payment.Record {
	return &payment.Record{
		AssetID:       42,
		PayerID:       "0xABC",
		Amount:        decimal.RequireFromString("5.99"),
		TransactionID: "tx_1",
		Provider:      "mock",
		Origin:        payment.OriginReceipt,
		VerifiedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// =====================================================================
// Tests
// =====================================================================

func TestPaymentHandler_VerifyPayment_StringReceipt(t *testing.T) {
	h, m := newTestPaymentHandler()
	m.verify.result = &accessuc.VerifyPaymentResult{Record: verifiedRecord(), UserID: "0xABC"}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/x402/verify",
		`{"assetId":42,"receipt":"tx_1","userId":"0xABC"}`)

	h.VerifyPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tx_1", m.verify.cmd.Receipt)
	assert.Equal(t, "0xABC", m.verify.cmd.UserID)
	assert.Equal(t, uint64(42), m.verify.cmd.AssetID)

	var resp VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, uint64(42), resp.Payment.AssetID)
	assert.Equal(t, "0xABC", resp.Payment.UserID)
	assert.Equal(t, 5.99, resp.Payment.Amount)
	assert.Equal(t, "tx_1", resp.Payment.TransactionID)
}

func TestPaymentHandler_VerifyPayment_ObjectReceipt(t *testing.T) {
	h, m := newTestPaymentHandler()
	m.verify.result = &accessuc.VerifyPaymentResult{Record: verifiedRecord(), UserID: "0xABC"}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/x402/verify",
		`{"assetId":42,"receipt":{"transactionId":"tx_1","userId":"0xABC","amount":"5.99","assetId":42}}`)

	h.VerifyPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tx_1", m.verify.cmd.Receipt)
	assert.Equal(t, "0xABC", m.verify.cmd.UserID)
	require.NotNil(t, m.verify.cmd.Amount)
	assert.True(t, m.verify.cmd.Amount.Equal(decimal.RequireFromString("5.99")))
}

func TestPaymentHandler_VerifyPayment_RequestFieldsWinOverReceiptHints(t *testing.T) {
	h, m := newTestPaymentHandler()
	m.verify.result = &accessuc.VerifyPaymentResult{Record: verifiedRecord(), UserID: "0xABC"}

	c, _ := testutil.NewTestContext(http.MethodPost, "/api/payments/x402/verify",
		`{"assetId":42,"userId":"0xABC","receipt":{"transactionId":"tx_1","userId":"0xOTHER"}}`)

	h.VerifyPayment(c)

	assert.Equal(t, "0xABC", m.verify.cmd.UserID)
}

func TestPaymentHandler_VerifyPayment_InvalidReceipt(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing receipt", `{"assetId":42}`},
		{"null receipt", `{"assetId":42,"receipt":null}`},
		{"numeric receipt", `{"assetId":42,"receipt":17}`},
		{"asset mismatch", `{"assetId":42,"receipt":{"transactionId":"tx_1","assetId":7}}`},
		{"malformed json", `{"assetId":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestPaymentHandler()

			c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/x402/verify", tt.body)

			h.VerifyPayment(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, m.verify.calls)

			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, "validation_error", resp.Error.Type)
		})
	}
}

func TestPaymentHandler_VerifyPayment_Denied(t *testing.T) {
	h, m := newTestPaymentHandler()
	m.verify.err = errors.NewPaymentDeniedError()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/x402/verify",
		`{"assetId":42,"receipt":"bogus"}`)

	h.VerifyPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "payment_verification_failed", resp.Error.Type)
}

func TestPaymentHandler_HandleWebhook(t *testing.T) {
	tests := []struct {
		name           string
		alreadyGranted bool
		wantMessage    string
	}{
		{"new grant", false, "Access granted"},
		{"redelivery", true, "Access already granted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestPaymentHandler()
			m.webhook.result = &accessuc.HandleWebhookResult{Record: verifiedRecord(), AlreadyGranted: tt.alreadyGranted}

			payload := `{"transactionId":"tx_1","assetId":42,"userId":"0xABC","amount":"5.99"}`
			c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/webhook", payload)
			c.Request.Header.Set("X-Webhook-Signature", "deadbeef")

			h.HandleWebhook(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, payload, string(m.webhook.cmd.Payload))
			assert.Equal(t, "deadbeef", m.webhook.cmd.Signature)

			var resp WebhookResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestPaymentHandler_HandleWebhook_Rejected(t *testing.T) {
	h, m := newTestPaymentHandler()
	m.webhook.err = errors.NewPaymentDeniedError()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/webhook", `{}`)

	h.HandleWebhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_GetPaymentStatus(t *testing.T) {
	h, m := newTestPaymentHandler()
	tx := "tx_1"
	m.status.result = &accessdto.GrantDTO{UserID: "0xABC", AssetID: 42, TransactionID: &tx, Source: "payment"}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/payments/status/tx_1", nil)
	testutil.SetURLParam(c, "transactionId", "tx_1")

	h.GetPaymentStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tx_1", m.status.txID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var grant accessdto.GrantDTO
	require.NoError(t, json.Unmarshal(resp.Data, &grant))
	assert.Equal(t, uint64(42), grant.AssetID)
}

func TestPaymentHandler_GetPaymentStatus_NotFound(t *testing.T) {
	h, m := newTestPaymentHandler()
	m.status.err = errors.NewNotFoundError("Transaction not found")

	c, w := testutil.NewTestContext(http.MethodGet, "/api/payments/status/tx_x", nil)
	testutil.SetURLParam(c, "transactionId", "tx_x")

	h.GetPaymentStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_GetUserHistory(t *testing.T) {
	h, m := newTestPaymentHandler()
	m.history.result = &accessdto.UserHistoryDTO{
		UserID:         "0xABC",
		Purchases:      []*accessdto.PurchaseDTO{{AssetID: 42, Price: 5.99}},
		TotalPurchases: 1,
		TotalSpent:     5.99,
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/payments/history/0xABC", nil)
	testutil.SetURLParam(c, "userId", "0xABC")

	h.GetUserHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var history accessdto.UserHistoryDTO
	require.NoError(t, json.Unmarshal(resp.Data, &history))
	assert.Equal(t, 1, history.TotalPurchases)
	assert.Equal(t, 5.99, history.TotalSpent)
}
