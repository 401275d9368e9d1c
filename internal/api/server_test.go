package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/common/config"
	"property-search/internal/common/logger"
	"property-search/internal/search/filters"
)

// ==========================
// Test Helper Functions
// ==========================

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, server config.ServerConfig, db Pinger) http.Handler {
	search := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	})
	return NewRouter(Dependencies{
		Server:  server,
		Search:  search,
		Catalog: filters.Default(),
		DB:      db,
		Logger:  logger.NewTestLogger(t),
	})
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ==========================
// Route Tests
// ==========================

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{}, stubPinger{})

	rec := get(h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestRouter_Ready(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{}, stubPinger{})
	assert.Equal(t, http.StatusOK, get(h, "/ready").Code)

	h = newTestRouter(t, config.ServerConfig{}, stubPinger{err: errors.New("unable to open database file")})
	rec := get(h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "DATABASE_CONNECTION_FAILED")
}

func TestRouter_Filters(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{}, stubPinger{})

	rec := get(h, "/api/filters")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Filters []filters.Descriptor `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Filters, len(filters.Default()))
	assert.Equal(t, "total_appraised_value", body.Filters[0].Key)
	assert.Equal(t, filters.KindSlider, body.Filters[6].Kind)
}

func TestRouter_Properties(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{}, stubPinger{})

	rec := get(h, "/api/properties?bedrooms=3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/properties", nil)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{}, stubPinger{})
	rec := get(h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// Middleware Tests
// ==========================

func TestRouter_RequestID(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{}, stubPinger{})

	rec := get(h, "/health")
	_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
	assert.NoError(t, err)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, id)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, id, res.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	res = httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.NotEqual(t, "<script>", res.Header().Get(HeaderRequestID))
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{AllowedOrigins: []string{"https://maps.example.com"}}, stubPinger{})

	req := httptest.NewRequest(http.MethodOptions, "/api/properties", nil)
	req.Header.Set("Origin", "https://maps.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://maps.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	h := newTestRouter(t, config.ServerConfig{RateLimit: 0.001, RateBurst: 2}, stubPinger{})

	assert.Equal(t, http.StatusOK, get(h, "/api/properties").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/properties").Code)

	rec := get(h, "/api/properties")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// operational endpoints are not limited
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)

	assert.True(t, rl.Allow("127.0.0.1"))
	assert.False(t, rl.Allow("127.0.0.1"))
	assert.True(t, rl.Allow("192.168.1.1"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4444"
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
