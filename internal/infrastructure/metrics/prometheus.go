// Package metrics exports access-flow and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scouty"

// Registry owns every collector the service exports. It implements the
// access-flow metrics.Recorder.
type Registry struct {
	reg *prometheus.Registry

	accessDecisions *prometheus.CounterVec
	verifications   *prometheus.CounterVec
	ledgerWrites    *prometheus.CounterVec
	cacheWrites     *prometheus.CounterVec

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	buildInfo *prometheus.GaugeVec
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		accessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Access decisions by outcome (cache, ledger, payment_required).",
		}, []string{"outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment verifications by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ledgerWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_writes_total",
			Help:      "Ledger write attempts by operation and result.",
		}, []string{"operation", "result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Access cache writes by result.",
		}, []string{"result"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Scouty build information.",
		}, []string{"version", "commit"}),
	}

	r.reg.MustRegister(
		r.accessDecisions, r.verifications, r.ledgerWrites, r.cacheWrites,
		r.httpInFlight, r.httpRequestsTotal, r.httpRequestDuration, r.buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the exposition format for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) SetBuildInfo(version, commit string) {
	r.buildInfo.WithLabelValues(version, commit).Set(1)
}

func (r *Registry) AccessDecision(outcome string) {
	r.accessDecisions.WithLabelValues(outcome).Inc()
}

func (r *Registry) PaymentVerification(provider, outcome string) {
	r.verifications.WithLabelValues(provider, outcome).Inc()
}

func (r *Registry) LedgerWrite(operation string, ok bool) {
	r.ledgerWrites.WithLabelValues(operation, result(ok)).Inc()
}

func (r *Registry) CacheWrite(ok bool) {
	r.cacheWrites.WithLabelValues(result(ok)).Inc()
}

// RequestStarted marks a request in flight and returns the function that
// records its completion. path should be the route template.
func (r *Registry) RequestStarted() func(method, path string, status int) {
	r.httpInFlight.Inc()
	start := time.Now()
	return func(method, path string, status int) {
		code := strconv.Itoa(status)
		r.httpRequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		r.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
		r.httpInFlight.Dec()
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
