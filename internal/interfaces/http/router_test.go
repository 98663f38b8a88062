package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/prometheus"
	"github.com/rankforge/rankforge/internal/interfaces/http/handlers"
	"github.com/rankforge/rankforge/internal/interfaces/http/middleware"
)

func TestRouterHealthAndMetricsEndpoints(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil),
		Logger:        logging.NewNop(),
		Metrics:       prometheus.NewMetrics(),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter(RouterConfig{Logger: logging.NewNop()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRateLimitApplies(t *testing.T) {
	rl := middleware.RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}
	router := NewRouter(RouterConfig{
		Logger:    logging.NewNop(),
		RateLimit: &rl,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	req.Header.Set("X-Real-IP", "10.1.1.1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
