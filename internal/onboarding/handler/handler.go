// Package handler wires onboarding endpoints to the onboarding service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"fingate/internal/onboarding/models"
	"fingate/internal/onboarding/service"
	id "fingate/pkg/domain"
	dErrors "fingate/pkg/domain-errors"
	"fingate/pkg/platform/httputil"
	"fingate/pkg/requestcontext"
)

// Service is the onboarding operations contract consumed by this handler.
type Service interface {
	StartSession(ctx context.Context, actor id.UserID, in service.StartInput) (*service.StartResult, error)
	HandleWebhook(ctx context.Context, event models.WebhookEvent) error
	SyncStatus(ctx context.Context, actor id.UserID, orgID id.OrganizationID, portal id.Portal) (*models.VerificationSession, error)
	Retry(ctx context.Context, actor id.UserID, orgID id.OrganizationID, portal id.Portal) (*service.StartResult, error)
}

// Handler serves the onboarding HTTP surface.
type Handler struct {
	service Service
	logger  *slog.Logger

	// webhookSecretHash is the bcrypt hash of the shared token the provider
	// sends with every webhook. Empty means webhook auth is disabled (dev).
	webhookSecretHash string
}

func New(svc Service, logger *slog.Logger, webhookSecretHash string) *Handler {
	return &Handler{service: svc, logger: logger, webhookSecretHash: webhookSecretHash}
}

// Register mounts the onboarding endpoints. Owner-facing operations sit
// behind requireAuth; the webhook endpoint authenticates with the shared
// provider token instead.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(g chi.Router) {
		g.Use(requireAuth)
		g.Post("/onboarding/start", h.HandleStart)
		g.Post("/onboarding/sync", h.HandleSync)
		g.Post("/onboarding/retry", h.HandleRetry)
	})
	r.Post("/webhooks/verification", h.HandleVerificationWebhook)
}

// HandleStart handles POST /onboarding/start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	actor := requestcontext.UserID(ctx)
	if actor.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, err := httputil.Decode[startRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.StartSession(ctx, actor, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "start onboarding failed",
			"request_id", requestcontext.RequestID(ctx),
			"organization_id", req.OrganizationID,
			"portal", req.Portal,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "onboarding session ready",
		"request_id", requestcontext.RequestID(ctx),
		"organization_id", req.OrganizationID,
		"provider_request_id", result.RequestID,
		"resumed", result.Resumed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	code := http.StatusCreated
	if result.Resumed {
		code = http.StatusOK
	}
	httputil.WriteJSON(w, code, sessionResponseFrom(result))
}

// HandleSync handles POST /onboarding/sync.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := requestcontext.UserID(ctx)
	if actor.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, err := httputil.Decode[orgPortalRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	orgID, portal, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.service.SyncStatus(ctx, actor, orgID, portal)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual sync failed",
			"request_id", requestcontext.RequestID(ctx),
			"organization_id", req.OrganizationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, syncResponseFrom(session))
}

// HandleRetry handles POST /onboarding/retry.
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := requestcontext.UserID(ctx)
	if actor.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, err := httputil.Decode[orgPortalRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	orgID, portal, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Retry(ctx, actor, orgID, portal)
	if err != nil {
		h.logger.ErrorContext(ctx, "onboarding retry failed",
			"request_id", requestcontext.RequestID(ctx),
			"organization_id", req.OrganizationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sessionResponseFrom(result))
}

// HandleVerificationWebhook handles POST /webhooks/verification. Always
// answers 200 for events we have durably recorded; 404 only when no session
// matches, so the provider stops retrying.
func (h *Handler) HandleVerificationWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.verifyWebhookToken(ctx, r.Header.Get("X-Webhook-Token")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := decodeWebhook(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.HandleWebhook(ctx, event); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "webhook processing failed",
				"request_id", requestcontext.RequestID(ctx),
				"provider_request_id", event.RequestID,
				"provider_status", event.Status,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) verifyWebhookToken(ctx context.Context, token string) error {
	if h.webhookSecretHash == "" {
		h.logger.WarnContext(ctx, "webhook secret not configured, accepting unauthenticated webhook")
		return nil
	}
	if token == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "missing webhook token")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.webhookSecretHash), []byte(token)); err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid webhook token")
	}
	return nil
}
