package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/infrastructure/config"
	"github.com/scoutystream/scouty/internal/shared/authorization"
	sharedConfig "github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   sharedConfig.ServerConfig{Mode: gin.TestMode, AllowedOrigins: []string{"http://localhost:3000"}},
		Database: sharedConfig.DatabaseConfig{Driver: "memory"},
		Ledger:   sharedConfig.LedgerConfig{Provider: "memory", WriteMode: "sync"},
		Payment: sharedConfig.PaymentConfig{
			Provider:      "mock",
			Currency:      "USD",
			AmountPolicy:  sharedConfig.AmountPolicyAcceptAny,
			VerifyTimeout: 5 * time.Second,
		},
		Storage: sharedConfig.StorageConfig{
			Provider:      "mock",
			BaseURL:       "https://cdn.test",
			URLExpiry:     5 * time.Minute,
			MaxUploadSize: 1 << 20,
		},
		Auth: sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{Secret: "test-secret", AccessExpMinutes: 10}},
		Scheduler: sharedConfig.SchedulerConfig{
			LedgerSyncInterval:  time.Minute,
			LedgerSyncBatchSize: 10,
			LedgerMaxAttempts:   3,
		},
		Processing: sharedConfig.ProcessingConfig{SimulatedDuration: 10 * time.Millisecond, DefaultPrice: "5.99"},
	}
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(context.Background(), nil, testConfig(), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	c.SetupRoutes()
	return c
}

func seedAsset(t *testing.T, c *Container) uint64 {
	t.Helper()
	a, err := asset.NewCatalogEntry("Derby highlights", "Full match", decimal.RequireFromString("2.50"), asset.ProviderHLS, "", nil)
	require.NoError(t, err)
	require.NoError(t, c.Assets().Create(context.Background(), a))
	return a.ID()
}

func serve(c *Container, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	c.Engine().ServeHTTP(w, req)
	return w
}

func TestNewContainer_RejectsUnknownAmountPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Payment.AmountPolicy = "generous"

	_, err := NewContainer(context.Background(), nil, cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestNewContainer_SQLDriverWithoutConnection(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "sqlite"

	_, err := NewContainer(context.Background(), nil, cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestRoutes_PurchaseUnlocksManifest(t *testing.T) {
	c := newTestContainer(t)
	id := seedAsset(t, c)
	manifest := fmt.Sprintf("/api/assets/%d/manifest?address=0xfan", id)

	w := serve(c, http.MethodGet, manifest, nil, nil)
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "payment_required")

	w = serve(c, http.MethodPost, fmt.Sprintf("/api/assets/%d/purchase", id), map[string]string{"userId": "0xfan"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(c, http.MethodGet, manifest, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// a different wallet is still challenged
	w = serve(c, http.MethodGet, fmt.Sprintf("/api/assets/%d/manifest?address=0xother", id), nil, nil)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestRoutes_AdminRequiresToken(t *testing.T) {
	c := newTestContainer(t)
	id := seedAsset(t, c)
	body := map[string]any{"userId": "0xfan", "assetId": id}

	w := serve(c, http.MethodPost, "/api/admin/access/grant", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	uploaderToken, _, err := c.jwtSvc.Generate("uploader-1", authorization.RoleUploader)
	require.NoError(t, err)
	w = serve(c, http.MethodPost, "/api/admin/access/grant", body, map[string]string{"Authorization": "Bearer " + uploaderToken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, _, err := c.jwtSvc.Generate("ops", authorization.RoleAdmin)
	require.NoError(t, err)
	w = serve(c, http.MethodPost, "/api/admin/access/grant", body, map[string]string{"Authorization": "Bearer " + adminToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(c, http.MethodGet, fmt.Sprintf("/api/assets/%d/manifest?address=0xfan", id), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	c := newTestContainer(t)
	seedAsset(t, c)

	w := serve(c, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"memory"`)

	w = serve(c, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRoutes_ListAssets(t *testing.T) {
	c := newTestContainer(t)
	seedAsset(t, c)

	w := serve(c, http.MethodGet, "/api/assets", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Derby highlights")

	w = serve(c, http.MethodGet, "/api/assets?status=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
