package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication outcomes recorded by the auth middleware
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeMissingToken  = "missing_token"
	OutcomeInvalidToken  = "invalid_token"
	OutcomeError         = "error"
)

// Metrics holds the gateway's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	AuthAttemptsTotal   *prometheus.CounterVec
	ProfilesProvisioned prometheus.Counter
	RoleDenialsTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_gateway_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_gateway_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_gateway_auth_attempts_total",
				Help: "Bearer token authentication attempts by outcome",
			},
			[]string{"outcome"},
		),
		ProfilesProvisioned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_gateway_profiles_provisioned_total",
				Help: "Profiles created on first sight of a verified identity",
			},
		),
		RoleDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_gateway_role_denials_total",
				Help: "Requests rejected by a role gate",
			},
			[]string{"role"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.ProfilesProvisioned,
		m.RoleDenialsTotal,
	)

	return m
}

// NewNopMetrics returns metrics registered on a throwaway registry
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// RecordAuth counts one authentication attempt
func (m *Metrics) RecordAuth(outcome string) {
	if m == nil {
		return
	}
	m.AuthAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordProvisioned counts one profile created on first sight
func (m *Metrics) RecordProvisioned() {
	if m == nil {
		return
	}
	m.ProfilesProvisioned.Inc()
}

// RecordRoleDenial counts one request whose profile role was not allowed
func (m *Metrics) RecordRoleDenial(role string) {
	if m == nil {
		return
	}
	m.RoleDenialsTotal.WithLabelValues(role).Inc()
}

// RegisterCacheStats exposes the hit and miss counts reported by stats as
// profile cache counters.
func (m *Metrics) RegisterCacheStats(stats func() (hits, misses int64)) {
	if m == nil {
		return
	}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "auth_gateway_profile_cache_hits_total",
				Help: "Profile lookups served from the cache",
			},
			func() float64 {
				hits, _ := stats()
				return float64(hits)
			},
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "auth_gateway_profile_cache_misses_total",
				Help: "Profile lookups that fell through to the backing store",
			},
			func() float64 {
				_, misses := stats()
				return float64(misses)
			},
		),
	)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPMetricsMiddleware instruments HTTP requests. Requests are labelled by
// chi route pattern so path parameters do not explode cardinality.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
