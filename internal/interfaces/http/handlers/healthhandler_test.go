package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/interfaces/http/handlers/testutil"
)

type stubLedgerInfo struct{ info ledger.NetworkInfo }

func (s stubLedgerInfo) NetworkInfo() ledger.NetworkInfo { return s.info }

type stubGrantCounter struct {
	n   int64
	err error
}

func (s stubGrantCounter) Count(ctx context.Context) (int64, error) { return s.n, s.err }

type stubAssetCounter struct {
	counts map[asset.Status]int64
	err    error
}

func (s stubAssetCounter) CountByStatus(ctx context.Context) (map[asset.Status]int64, error) {
	return s.counts, s.err
}

func newTestHealthHandler(grants stubGrantCounter, assets stubAssetCounter) *HealthHandler {
	return NewHealthHandler(
		stubLedgerInfo{info: ledger.NetworkInfo{Provider: "chiliz", ChainID: 88882, IsConfigured: false}},
		grants,
		assets,
		StorageInfo{Provider: "mock"},
		PaymentInfo{Provider: "mock", Currency: "USD"},
		"development",
		testutil.NewMockLogger(),
	)
}

func TestHealthHandler_Healthy(t *testing.T) {
	h := newTestHealthHandler(
		stubGrantCounter{n: 3},
		stubAssetCounter{counts: map[asset.Status]int64{asset.StatusReady: 5, asset.StatusProcessing: 1}},
	)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/health", nil)
	h.HealthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "development", resp.Environment)
	assert.Equal(t, int64(88882), resp.Services.Ledger.ChainID)
	assert.False(t, resp.Services.Ledger.IsConfigured)
	assert.Equal(t, "mock", resp.Services.Payments.Provider)
	require.NotNil(t, resp.Database)
	assert.Equal(t, int64(3), resp.Database.Grants)
	assert.Equal(t, int64(5), resp.Database.AssetsByStatus["ready"])
}

func TestHealthHandler_StoreUnavailable(t *testing.T) {
	h := newTestHealthHandler(
		stubGrantCounter{err: stderrors.New("database is locked")},
		stubAssetCounter{counts: map[asset.Status]int64{}},
	)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/health", nil)
	h.HealthCheck(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Nil(t, resp.Database)
	assert.NotContains(t, w.Body.String(), "locked")
}
