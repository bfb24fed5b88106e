package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/cycle-care-api/internal/middleware"
	"github.com/noah-isme/cycle-care-api/internal/service"
	"github.com/noah-isme/cycle-care-api/pkg/config"
)

func testRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:       env,
		APIPrefix: "/api/v1",
		Cycle:     config.CycleConfig{Location: time.UTC},
	}
	metrics := service.NewMetricsService()
	return newRouter(routerDeps{
		cfg:         cfg,
		logger:      zap.NewNop(),
		metrics:     metrics,
		auth:        service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: "test", Issuer: "cycle-care-api"}),
		rateLimiter: middleware.NewRateLimiter(0, 0, metrics),
	})
}

func TestRouterProtectsCycleRoutes(t *testing.T) {
	r := testRouter(config.EnvDevelopment)
	for _, path := range []string{
		"/api/v1/cycle-logs",
		"/api/v1/cycle-logs/stats",
		"/api/v1/cycle/calendar?year=2024&month=3",
		"/api/v1/cycle/predictions",
		"/api/v1/cycle/export",
		"/api/v1/meals",
		"/api/v1/auth/me",
		"/api/v1/system/metrics",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouterPublicEndpoints(t *testing.T) {
	r := testRouter(config.EnvDevelopment)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cycle_care_http_requests_total")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterHidesDocsInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(config.EnvProduction).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
