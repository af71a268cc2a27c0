package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessmetrics "github.com/scoutystream/scouty/internal/application/access/metrics"
)

var _ accessmetrics.Recorder = (*Registry)(nil)

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.AccessDecision(accessmetrics.DecisionCache)
	r.AccessDecision(accessmetrics.DecisionCache)
	r.PaymentVerification("mock", accessmetrics.VerificationDenied)
	r.LedgerWrite("grant", false)
	r.CacheWrite(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.accessDecisions.WithLabelValues("cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verifications.WithLabelValues("mock", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ledgerWrites.WithLabelValues("grant", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheWrites.WithLabelValues("ok")))
}

func TestRegistry_HTTPAndExposition(t *testing.T) {
	r := NewRegistry()
	r.SetBuildInfo("v1.0.0", "abc123")

	done := r.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpInFlight))
	done(http.MethodGet, "/api/assets/:id", http.StatusOK)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequestsTotal.WithLabelValues("GET", "/api/assets/:id", "200")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `build_info{commit="abc123",version="v1.0.0"} 1`)
	assert.Contains(t, string(body), "http_requests_total")
}
