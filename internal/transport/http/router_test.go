package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	onbhandler "fingate/internal/onboarding/handler"
)

func passthroughAuth(next http.Handler) http.Handler { return next }

func newRouter(health map[string]HealthCheck) http.Handler {
	logger := slog.New(slog.DiscardHandler)
	return NewRouter(Deps{
		Logger:      logger,
		Onboarding:  onbhandler.New(nil, logger, ""),
		RequireAuth: passthroughAuth,
		Health:      health,
	})
}

func TestHealthzOK(t *testing.T) {
	router := newRouter(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
}

func TestHealthzDegraded(t *testing.T) {
	router := newRouter(map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestMetricsExposed(t *testing.T) {
	router := newRouter(nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
