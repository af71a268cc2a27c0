package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/domain/payment"
	"github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

func TestX402ChallengeIssuer(t *testing.T) {
	issuer := NewX402ChallengeIssuer("ScoutyStream", "USD")
	c := issuer.IssueChallenge(42, decimal.RequireFromString("5.99"))

	assert.Equal(t, `L402 realm="ScoutyStream", charset="UTF-8"`, c.Headers[HeaderWWWAuthenticate])
	assert.Equal(t, "application/json", c.Headers[HeaderL402AcceptPayment])
	assert.Equal(t, "5.99", c.Headers[HeaderL402Amount])
	assert.Equal(t, "USD", c.Headers[HeaderL402Currency])

	raw, err := base64.StdEncoding.DecodeString(c.Headers[HeaderL402Challenge])
	require.NoError(t, err)
	var token challengeToken
	require.NoError(t, json.Unmarshal(raw, &token))
	assert.Equal(t, uint64(42), token.VideoID)
	assert.Equal(t, "5.99", token.Amount)
	assert.NotEmpty(t, token.Nonce)

	other := issuer.IssueChallenge(42, decimal.RequireFromString("5.99"))
	assert.NotEqual(t, c.Headers[HeaderL402Challenge], other.Headers[HeaderL402Challenge], "nonce is random")
}

func TestMockChallengeIssuer(t *testing.T) {
	c := NewMockChallengeIssuer("USD").IssueChallenge(7, decimal.Zero)

	assert.Equal(t, map[string]string{
		HeaderPaymentRequired: "true",
		HeaderPaymentAmount:   "0.00",
		HeaderPaymentCurrency: "USD",
		HeaderVideoID:         "7",
	}, c.Headers)
	assert.True(t, c.Price.IsZero())
}

func TestParseWebhook_FieldFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    payment.Record
	}{
		{
			name:    "nested provider payload",
			payload: `{"id":"evt_1","amount":"5.99","metadata":{"video_id":42},"customer":{"address":"0xABC"}}`,
			want:    payment.Record{TransactionID: "evt_1", AssetID: 42, PayerID: "0xABC", Amount: decimal.RequireFromString("5.99")},
		},
		{
			name:    "flattened payload",
			payload: `{"transaction_id":"tx_9","total":3.5,"video_id":"7","user_address":"0xDEF"}`,
			want:    payment.Record{TransactionID: "tx_9", AssetID: 7, PayerID: "0xDEF", Amount: decimal.RequireFromString("3.5")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWebhook(ProviderX402, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want.TransactionID, got.TransactionID)
			assert.Equal(t, tt.want.AssetID, got.AssetID)
			assert.Equal(t, tt.want.PayerID, got.PayerID)
			assert.True(t, tt.want.Amount.Equal(got.Amount))
			assert.Equal(t, payment.OriginWebhook, got.Origin)
		})
	}

	_, err := parseWebhook(ProviderX402, []byte(`{"amount":1}`))
	assert.ErrorIs(t, err, errMissingTxID)
	_, err = parseWebhook(ProviderX402, []byte(`not json`))
	assert.Error(t, err)
}

func TestProcessWebhook_Signature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","amount":"5.99","video_id":42,"user_address":"0xABC"}`)
	v := NewX402Verifier("http://facilitator.test", "", "whsec", nil, logger.NewNop())
	ctx := context.Background()

	assert.NotNil(t, v.ProcessWebhook(ctx, payload, Sign("whsec", payload)))
	assert.NotNil(t, v.ProcessWebhook(ctx, payload, "sha256="+Sign("whsec", payload)))
	assert.Nil(t, v.ProcessWebhook(ctx, payload, Sign("other", payload)))
	assert.Nil(t, v.ProcessWebhook(ctx, payload, ""))
	assert.Nil(t, v.ProcessWebhook(ctx, payload, "zz-not-hex"))

	unsigned := NewX402Verifier("http://facilitator.test", "", "", nil, logger.NewNop())
	assert.NotNil(t, unsigned.ProcessWebhook(ctx, payload, ""))
}

func TestX402Verifier_VerifyReceipt(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/verify", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("X-API-Key"))

		var req verifyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Receipt {
		case "good":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"valid": true, "transactionId": "tx_1", "payer": "0xABC", "amount": 5.99, "assetId": req.AssetID,
			})
		case "boom":
			w.WriteHeader(http.StatusBadGateway)
		case "slow":
			time.Sleep(200 * time.Millisecond)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"valid": true})
		default:
			w.WriteHeader(http.StatusPaymentRequired)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"valid": false, "reason": "unknown receipt"})
		}
	}))
	defer server.Close()

	v := NewX402Verifier(server.URL+"/", "key-1", "", server.Client(), logger.NewNop())
	price := decimal.RequireFromString("5.99")

	t.Run("valid receipt", func(t *testing.T) {
		rec := v.VerifyReceipt(context.Background(), payment.Receipt{Token: "good", AssetID: 42, Price: price})
		require.NotNil(t, rec)
		assert.Equal(t, "tx_1", rec.TransactionID)
		assert.Equal(t, "0xABC", rec.PayerID)
		assert.Equal(t, uint64(42), rec.AssetID)
		assert.True(t, rec.Amount.Equal(price))
		assert.Equal(t, ProviderX402, rec.Provider)
	})

	t.Run("rejected receipt", func(t *testing.T) {
		assert.Nil(t, v.VerifyReceipt(context.Background(), payment.Receipt{Token: "forged", AssetID: 42, Price: price}))
	})

	t.Run("facilitator error", func(t *testing.T) {
		assert.Nil(t, v.VerifyReceipt(context.Background(), payment.Receipt{Token: "boom", AssetID: 42, Price: price}))
	})

	t.Run("timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.Nil(t, v.VerifyReceipt(ctx, payment.Receipt{Token: "slow", AssetID: 42, Price: price}))
	})

	t.Run("empty receipt never reaches the facilitator", func(t *testing.T) {
		before := atomic.LoadInt32(&requests)
		assert.Nil(t, v.VerifyReceipt(context.Background(), payment.Receipt{Token: "  ", AssetID: 42}))
		assert.Equal(t, before, atomic.LoadInt32(&requests))
	})
}

func TestMockVerifier(t *testing.T) {
	v := NewMockVerifier("", logger.NewNop())
	price := decimal.RequireFromString("5.99")

	rec := v.VerifyReceipt(context.Background(), payment.Receipt{Token: "tx_1", AssetID: 42, PayerID: "0xABC", Price: price})
	require.NotNil(t, rec)
	assert.Equal(t, "tx_1", rec.TransactionID)
	assert.True(t, rec.Amount.Equal(price))

	again := v.VerifyReceipt(context.Background(), payment.Receipt{Token: "tx_1", AssetID: 42, PayerID: "0xABC", Price: price})
	assert.Equal(t, rec.TransactionID, again.TransactionID)
	assert.True(t, rec.Amount.Equal(again.Amount))

	assert.Nil(t, v.VerifyReceipt(context.Background(), payment.Receipt{AssetID: 42}))
}

func TestNew(t *testing.T) {
	issuer, verifier, err := New(config.PaymentConfig{Provider: "mock"}, nil, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, issuer.Provider())
	assert.Equal(t, ProviderMock, verifier.Provider())

	_, _, err = New(config.PaymentConfig{Provider: "x402"}, nil, logger.NewNop())
	assert.Error(t, err, "facilitator url is required")

	issuer, _, err = New(config.PaymentConfig{Provider: "x402", FacilitatorURL: "https://x402.test"}, nil, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ProviderX402, issuer.Provider())

	_, _, err = New(config.PaymentConfig{Provider: "stripe"}, nil, logger.NewNop())
	assert.Error(t, err)
}
