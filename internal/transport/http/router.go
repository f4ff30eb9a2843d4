// Package httptransport assembles the HTTP surface: middleware stack,
// onboarding routes, health and metrics endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	onbhandler "fingate/internal/onboarding/handler"
	"fingate/pkg/platform/httputil"
	"fingate/pkg/platform/middleware"
)

// HealthCheck reports one dependency's health, keyed by name.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Onboarding  *onbhandler.Handler
	RequireAuth func(http.Handler) http.Handler
	Health      map[string]HealthCheck
}

// NewRouter builds the full middleware and routing stack.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", healthHandler(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	deps.Onboarding.Register(r, deps.RequireAuth)
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
