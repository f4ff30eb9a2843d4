// Package provider is the typed HTTP client for the external verification
// provider. It owns the wire contract; orchestration policy lives in the
// onboarding service.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fingate/pkg/platform/sentinel"
)

// DefaultLinkTTL applies when the provider omits expires_in.
const DefaultLinkTTL = 86400 * time.Second

const tracerName = "fingate/internal/onboarding/provider"

// Client talks to the verification provider over HTTPS. Every call carries a
// deadline: the provider is a third party outside this system's control.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Tests use this to
// point at an httptest server with a short timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a provider client with a default per-call timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateIndividualSession opens a personal verification session.
func (c *Client) CreateIndividualSession(ctx context.Context, req CreateIndividualSessionRequest) (*CreateSessionResponse, error) {
	var resp CreateSessionResponse
	if err := c.do(ctx, "create_individual_session", http.MethodPost, "/v1/sessions/individual", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCorporateSession opens a company verification session.
func (c *Client) CreateCorporateSession(ctx context.Context, req CreateCorporateSessionRequest) (*CreateSessionResponse, error) {
	var resp CreateSessionResponse
	if err := c.do(ctx, "create_corporate_session", http.MethodPost, "/v1/sessions/corporate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSessionDetails fetches the provider's full view of a session, keeping
// the verbatim body for the payload history.
func (c *Client) GetSessionDetails(ctx context.Context, requestID string) (*SessionDetails, error) {
	body, err := c.doRaw(ctx, "get_session_details", http.MethodGet, "/v1/sessions/"+requestID, nil)
	if err != nil {
		return nil, err
	}
	var details SessionDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("decode session details: %w", err)
	}
	details.RawPayload = body
	return &details, nil
}

// SetWebhookPreferences registers the global callback endpoint. Best-effort
// from the orchestrator's point of view; the client just reports the outcome.
func (c *Client) SetWebhookPreferences(ctx context.Context, req WebhookPreferencesRequest) error {
	return c.do(ctx, "set_webhook_preferences", http.MethodPost, "/v1/settings/webhooks", req, nil)
}

// SetFormSettings applies per-form settings for one verification flow.
func (c *Client) SetFormSettings(ctx context.Context, req FormSettingsRequest) error {
	return c.do(ctx, "set_form_settings", http.MethodPost, "/v1/settings/forms", req, nil)
}

// RestartSession re-opens an existing session, yielding a fresh verify link
// under the same request id.
func (c *Client) RestartSession(ctx context.Context, req RestartSessionRequest) (*CreateSessionResponse, error) {
	var resp CreateSessionResponse
	if err := c.do(ctx, "restart_session", http.MethodPost, "/v1/sessions/"+req.RequestID+"/restart", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, reqBody, respBody any) error {
	raw, err := c.doRaw(ctx, op, method, path, reqBody)
	if err != nil {
		return err
	}
	if respBody == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, respBody); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, op, method, path string, reqBody any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "provider."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.method", method)),
	)
	defer span.End()

	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		span.SetStatus(codes.Error, "non-2xx response")
		return nil, fmt.Errorf("%s: provider returned %d: %w", op, resp.StatusCode, sentinel.ErrUnavailable)
	}
	return raw, nil
}
