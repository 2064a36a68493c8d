package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-gateway/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ObservabilityConfig
		level   zapcore.Level
		wantErr bool
	}{
		{"json info", config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"}, zapcore.InfoLevel, false},
		{"console debug", config.ObservabilityConfig{LogLevel: "debug", LogFormat: "console"}, zapcore.DebugLevel, false},
		{"upper case level", config.ObservabilityConfig{LogLevel: "WARN", LogFormat: "json"}, zapcore.WarnLevel, false},
		{"unknown level", config.ObservabilityConfig{LogLevel: "verbose"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fine"))
	})
	r.Get("/denied", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, path := range []string{"/ok", "/denied", "/broken"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestMetrics_Recorders(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordAuth(OutcomeAuthenticated)
	m.RecordAuth(OutcomeAuthenticated)
	m.RecordAuth(OutcomeMissingToken)
	m.RecordProvisioned()
	m.RecordRoleDenial("user")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues(OutcomeAuthenticated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues(OutcomeMissingToken)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfilesProvisioned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleDenialsTotal.WithLabelValues("user")))
}

func TestMetrics_RegisterCacheStats(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	hits, misses := int64(3), int64(1)
	m.RegisterCacheStats(func() (int64, int64) { return hits, misses })

	expected := `
# HELP auth_gateway_profile_cache_hits_total Profile lookups served from the cache
# TYPE auth_gateway_profile_cache_hits_total counter
auth_gateway_profile_cache_hits_total 3
# HELP auth_gateway_profile_cache_misses_total Profile lookups that fell through to the backing store
# TYPE auth_gateway_profile_cache_misses_total counter
auth_gateway_profile_cache_misses_total 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"auth_gateway_profile_cache_hits_total", "auth_gateway_profile_cache_misses_total"))

	hits = 5
	expected = strings.Replace(expected, "hits_total 3", "hits_total 5", 1)
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"auth_gateway_profile_cache_hits_total", "auth_gateway_profile_cache_misses_total"))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAuth(OutcomeError)
		m.RecordProvisioned()
		m.RecordRoleDenial("user")
		m.RegisterCacheStats(func() (int64, int64) { return 0, 0 })
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := NewNopMetrics()

	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware(m))
	r.Get("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/profile", "401")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "auth_gateway_http_requests_total"))
}
