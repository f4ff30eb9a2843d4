// Package service orchestrates onboarding verification: session start with
// resume, webhook ingestion, manual sync and retry. It owns the reconciliation
// between provider-side verification state and the local organization
// lifecycle; it does not own final approval, which is gated on AML screening
// by an admin collaborator.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"fingate/internal/audit"
	"fingate/internal/onboarding/extract"
	"fingate/internal/onboarding/lock"
	onbmetrics "fingate/internal/onboarding/metrics"
	"fingate/internal/onboarding/models"
	"fingate/internal/onboarding/provider"
	"fingate/internal/onboarding/status"
	"fingate/internal/onboarding/store"
	"fingate/internal/organization"
	id "fingate/pkg/domain"
	dErrors "fingate/pkg/domain-errors"
	"fingate/pkg/platform/sentinel"
	"fingate/pkg/requestcontext"
)

// ProviderClient is the outbound verification-provider contract, consumer-side.
type ProviderClient interface {
	CreateIndividualSession(ctx context.Context, req provider.CreateIndividualSessionRequest) (*provider.CreateSessionResponse, error)
	CreateCorporateSession(ctx context.Context, req provider.CreateCorporateSessionRequest) (*provider.CreateSessionResponse, error)
	GetSessionDetails(ctx context.Context, requestID string) (*provider.SessionDetails, error)
	SetWebhookPreferences(ctx context.Context, req provider.WebhookPreferencesRequest) error
	SetFormSettings(ctx context.Context, req provider.FormSettingsRequest) error
	RestartSession(ctx context.Context, req provider.RestartSessionRequest) (*provider.CreateSessionResponse, error)
}

// Service coordinates sessions, the organization store, the provider and the
// audit trail. All methods take organization and portal explicitly.
type Service struct {
	sessions store.SessionStore
	orgs     organization.Store
	provider ProviderClient
	auditLog *audit.Emitter
	locks    lock.OrgLock
	metrics  *onbmetrics.Metrics
	logger   *slog.Logger

	callbackURL string
	detailDelay time.Duration
	allowHTTP   bool

	starts singleflight.Group
}

type serviceConfig struct {
	auditLog    *audit.Emitter
	locks       lock.OrgLock
	metrics     *onbmetrics.Metrics
	logger      *slog.Logger
	detailDelay time.Duration
	allowHTTP   bool
}

type Option func(*serviceConfig)

// WithAuditEmitter wires the audit trail. Without it audit events are dropped.
func WithAuditEmitter(e *audit.Emitter) Option {
	return func(c *serviceConfig) { c.auditLog = e }
}

// WithLock replaces the default in-process lock, typically with the Redis one.
func WithLock(l lock.OrgLock) Option {
	return func(c *serviceConfig) { c.locks = l }
}

func WithMetrics(m *onbmetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = l }
}

// WithDetailFetchDelay sets how long to wait after provider approval before
// fetching details, so trailing webhooks with richer data can land. Tests
// pass 0.
func WithDetailFetchDelay(d time.Duration) Option {
	return func(c *serviceConfig) { c.detailDelay = d }
}

// WithInsecureCallbacks permits plain-http callback URLs. Dev mode only.
func WithInsecureCallbacks() Option {
	return func(c *serviceConfig) { c.allowHTTP = true }
}

func NewService(sessions store.SessionStore, orgs organization.Store, providerClient ProviderClient, callbackURL string, opts ...Option) *Service {
	cfg := &serviceConfig{detailDelay: 2 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.locks == nil {
		cfg.locks = lock.NewInMemoryLock()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		sessions:    sessions,
		orgs:        orgs,
		provider:    providerClient,
		auditLog:    cfg.auditLog,
		locks:       cfg.locks,
		metrics:     cfg.metrics,
		logger:      cfg.logger,
		callbackURL: callbackURL,
		detailDelay: cfg.detailDelay,
		allowHTTP:   cfg.allowHTTP,
	}
}

// StartInput carries the start-onboarding request. Entity fields are passed
// through to the provider's session-create call.
type StartInput struct {
	OrganizationID id.OrganizationID
	Portal         id.Portal
	Kind           id.OnboardingKind

	// Individual flow.
	FirstName   string
	LastName    string
	IDNumber    string
	DateOfBirth string

	// Corporate flow.
	CompanyName string
}

// StartResult is returned by StartSession and Retry.
type StartResult struct {
	RequestID        id.ProviderRequestID
	VerifyLink       string
	VerifyLinkExpiry time.Time
	Status           id.OnboardingStatus
	Resumed          bool
}

// StartSession begins or resumes provider verification for an organization.
// Concurrent calls for the same (organization, portal) collapse to one
// execution; the storage layer's one-active-session constraint closes the
// race across replicas.
func (s *Service) StartSession(ctx context.Context, actor id.UserID, in StartInput) (*StartResult, error) {
	org, err := s.authorizedOrganization(ctx, actor, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org.OnboardingStatus == id.StatusCompleted {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "organization onboarding is already completed")
	}
	if err := requireKindMatch(org.Kind, in.Kind); err != nil {
		return nil, err
	}
	if in.Kind == "" {
		in.Kind = org.Kind.OnboardingKind()
	}
	// The provider cannot reach a local-only callback; fail before any
	// provider call.
	if err := s.validateCallbackURL(); err != nil {
		return nil, err
	}

	key := in.OrganizationID.String() + ":" + in.Portal.String()
	result, err, _ := s.starts.Do(key, func() (any, error) {
		release, err := s.locks.Acquire(ctx, in.OrganizationID, in.Portal)
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "another onboarding operation is in progress")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire onboarding lock")
		}
		defer release()
		return s.resumeOrCreate(ctx, actor, org, in)
	})
	if err != nil {
		return nil, err
	}
	return result.(*StartResult), nil
}

func (s *Service) resumeOrCreate(ctx context.Context, actor id.UserID, org *organization.Organization, in StartInput) (*StartResult, error) {
	existing, err := s.sessions.FindLatestByOrganization(ctx, in.OrganizationID, in.Portal)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification session")
	}

	if existing != nil && existing.IsActive() {
		if status.IsResumable(existing.Status) && existing.VerifyLink != "" {
			s.emit(ctx, audit.Event{
				Type:           audit.EventOnboardingResumed,
				ActorUserID:    actor.String(),
				Role:           audit.RoleOwner,
				OrganizationID: in.OrganizationID,
				Portal:         in.Portal,
				Metadata:       map[string]string{"request_id": existing.ProviderRequestID.String()},
			})
			if s.metrics != nil {
				s.metrics.SessionsResumed.Inc()
			}
			return &StartResult{
				RequestID:        existing.ProviderRequestID,
				VerifyLink:       existing.VerifyLink,
				VerifyLinkExpiry: existing.VerifyLinkExpiry,
				Status:           existing.Status,
				Resumed:          true,
			}, nil
		}
		return nil, dErrors.New(dErrors.CodeConflict, "verification is already under review")
	}

	s.applyProviderSettings(ctx, in.OrganizationID)

	resp, err := s.createProviderSession(ctx, in)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	session := &models.VerificationSession{
		ProviderRequestID: id.ProviderRequestID(resp.RequestID),
		OrganizationID:    in.OrganizationID,
		Portal:            in.Portal,
		Kind:              in.Kind,
		Status:            status.InitialStatus(org.Kind),
		VerifyLink:        resp.VerifyURL,
		VerifyLinkExpiry:  now.Add(linkTTL(resp)),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "another onboarding operation is in progress")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification session")
	}
	if err := s.orgs.UpdateOnboardingStatus(ctx, in.OrganizationID, session.Status); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization status")
	}

	s.emit(ctx, audit.Event{
		Type:           audit.EventOnboardingStarted,
		ActorUserID:    actor.String(),
		Role:           audit.RoleOwner,
		OrganizationID: in.OrganizationID,
		Portal:         in.Portal,
		Metadata:       map[string]string{"request_id": resp.RequestID},
	})
	if s.metrics != nil {
		s.metrics.SessionsStarted.Inc()
	}
	return &StartResult{
		RequestID:        session.ProviderRequestID,
		VerifyLink:       session.VerifyLink,
		VerifyLinkExpiry: session.VerifyLinkExpiry,
		Status:           session.Status,
	}, nil
}

func (s *Service) createProviderSession(ctx context.Context, in StartInput) (*provider.CreateSessionResponse, error) {
	defer s.observeProvider("create_session")()
	var (
		resp *provider.CreateSessionResponse
		err  error
	)
	switch in.Kind {
	case id.OnboardingCorporate:
		resp, err = s.provider.CreateCorporateSession(ctx, provider.CreateCorporateSessionRequest{
			ReferenceID: in.OrganizationID.String(),
			CallbackURL: s.callbackURL,
			CompanyName: in.CompanyName,
		})
	default:
		resp, err = s.provider.CreateIndividualSession(ctx, provider.CreateIndividualSessionRequest{
			ReferenceID: in.OrganizationID.String(),
			CallbackURL: s.callbackURL,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			IDNumber:    in.IDNumber,
			DateOfBirth: in.DateOfBirth,
		})
	}
	if err != nil {
		return nil, providerCallError(err, "failed to create verification session")
	}
	return resp, nil
}

// HandleWebhook ingests one provider status notification. Idempotent under
// re-delivery; returns not-found only when no session matches the request id,
// so the provider stops retrying events we have durably recorded.
func (s *Service) HandleWebhook(ctx context.Context, event models.WebhookEvent) error {
	session, err := s.sessions.FindByRequestID(ctx, event.RequestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			if s.metrics != nil {
				s.metrics.WebhooksUnknown.Inc()
			}
			return dErrors.New(dErrors.CodeNotFound, "no verification session for request id")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification session")
	}

	// Record the payload before any interpretation: the forensic trail must
	// survive mapping bugs.
	if len(event.Raw) > 0 {
		if err := s.sessions.AppendPayload(ctx, event.RequestID, event.Raw); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record webhook payload")
		}
	}
	if s.metrics != nil {
		s.metrics.WebhooksReceived.WithLabelValues(event.Status).Inc()
	}

	if err := s.applyProviderStatus(ctx, session, event.Status, event.Substatus, nil); err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Type:           audit.EventOnboardingWebhook,
		Role:           audit.RoleProvider,
		OrganizationID: session.OrganizationID,
		Portal:         session.Portal,
		Metadata: map[string]string{
			"request_id":      event.RequestID.String(),
			"provider_status": event.Status,
		},
	})
	return nil
}

// SyncStatus queries the provider for the session's current state and applies
// it through the same path as webhook ingestion. Used when webhook delivery is
// suspected to have failed.
func (s *Service) SyncStatus(ctx context.Context, actor id.UserID, orgID id.OrganizationID, portal id.Portal) (*models.VerificationSession, error) {
	if _, err := s.authorizedOrganization(ctx, actor, orgID); err != nil {
		return nil, err
	}
	session, err := s.sessions.FindLatestByOrganization(ctx, orgID, portal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification session to sync")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification session")
	}

	obs := s.observeProvider("get_session_details")
	details, err := s.provider.GetSessionDetails(ctx, session.ProviderRequestID.String())
	obs()
	if err != nil {
		return nil, providerCallError(err, "failed to query verification session")
	}
	if len(details.RawPayload) > 0 {
		if err := s.sessions.AppendPayload(ctx, session.ProviderRequestID, details.RawPayload); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record session details")
		}
	}
	if s.metrics != nil {
		s.metrics.SyncRequests.Inc()
	}

	if err := s.applyProviderStatus(ctx, session, details.Status, details.Substatus, details); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Type:           audit.EventOnboardingSynced,
		ActorUserID:    actor.String(),
		Role:           audit.RoleOwner,
		OrganizationID: orgID,
		Portal:         portal,
		Metadata: map[string]string{
			"request_id":      session.ProviderRequestID.String(),
			"provider_status": details.Status,
		},
	})

	return s.sessions.FindByRequestID(ctx, session.ProviderRequestID)
}

// Retry restarts a session at the provider, refreshing the verify link and
// resetting status without creating a second session row.
func (s *Service) Retry(ctx context.Context, actor id.UserID, orgID id.OrganizationID, portal id.Portal) (*StartResult, error) {
	org, err := s.authorizedOrganization(ctx, actor, orgID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.FindLatestByOrganization(ctx, orgID, portal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification session to retry")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification session")
	}

	s.applyProviderSettings(ctx, orgID)

	obs := s.observeProvider("restart_session")
	resp, err := s.provider.RestartSession(ctx, provider.RestartSessionRequest{
		RequestID: session.ProviderRequestID.String(),
	})
	obs()
	if err != nil {
		return nil, providerCallError(err, "failed to restart verification session")
	}

	now := requestcontext.Now(ctx)
	expiry := now.Add(linkTTL(resp))
	if err := s.sessions.UpdateVerifyLink(ctx, session.ProviderRequestID, resp.VerifyURL, expiry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verify link")
	}
	reset := status.InitialStatus(org.Kind)
	if err := s.sessions.UpdateStatus(ctx, session.ProviderRequestID, reset, "", nil); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset session status")
	}
	if err := s.orgs.UpdateOnboardingStatus(ctx, orgID, reset); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization status")
	}

	s.emit(ctx, audit.Event{
		Type:           audit.EventOnboardingRetried,
		ActorUserID:    actor.String(),
		Role:           audit.RoleOwner,
		OrganizationID: orgID,
		Portal:         portal,
		Metadata:       map[string]string{"request_id": session.ProviderRequestID.String()},
	})
	if s.metrics != nil {
		s.metrics.SessionsRetried.Inc()
	}
	return &StartResult{
		RequestID:        session.ProviderRequestID,
		VerifyLink:       resp.VerifyURL,
		VerifyLinkExpiry: expiry,
		Status:           reset,
	}, nil
}

// applyProviderStatus is the single path that folds a provider status into the
// session and the organization, shared by webhook ingestion and manual sync.
// Organization writes re-check current state first so re-delivery is harmless.
// preloaded carries session details when the caller already fetched them.
func (s *Service) applyProviderStatus(ctx context.Context, session *models.VerificationSession, providerStatus, substatus string, preloaded *provider.SessionDetails) error {
	mapped := status.MapProviderStatus(providerStatus)

	// Webhooks arrive out of order. Once the session is closed, only another
	// terminal status may still apply (a repeated approval re-runs
	// extraction); a stale pre-approval event must not reopen the session or
	// drag the organization backwards. The payload has already been recorded.
	if (session.CompletedAt != nil || status.IsTerminal(session.Status)) && !status.IsTerminal(mapped) {
		s.logger.InfoContext(ctx, "ignoring stale provider status for completed session",
			"request_id", session.ProviderRequestID,
			"session_status", session.Status,
			"provider_status", providerStatus,
		)
		return nil
	}

	var completedAt *time.Time
	if mapped == id.StatusPendingAML || mapped == id.StatusRejected {
		now := requestcontext.Now(ctx)
		completedAt = &now
	}
	if err := s.sessions.UpdateStatus(ctx, session.ProviderRequestID, mapped, substatus, completedAt); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update session status")
	}

	switch mapped {
	case id.StatusLivenessPassed, id.StatusPendingApproval:
		if err := s.setOrganizationStatus(ctx, session.OrganizationID, id.StatusPendingApproval); err != nil {
			return err
		}
	case id.StatusPendingAML:
		s.completeVerification(ctx, session, preloaded)
		if err := s.setOrganizationStatus(ctx, session.OrganizationID, id.StatusPendingAML); err != nil {
			return err
		}
		s.emit(ctx, audit.Event{
			Type:           audit.EventVerificationCompleted,
			Role:           audit.RoleProvider,
			OrganizationID: session.OrganizationID,
			Portal:         session.Portal,
			Metadata:       map[string]string{"request_id": session.ProviderRequestID.String()},
		})
	case id.StatusRejected:
		if err := s.setOrganizationStatus(ctx, session.OrganizationID, id.StatusRejected); err != nil {
			return err
		}
		s.emit(ctx, audit.Event{
			Type:           audit.EventVerificationRejected,
			Role:           audit.RoleProvider,
			OrganizationID: session.OrganizationID,
			Portal:         session.Portal,
			Metadata: map[string]string{
				"request_id": session.ProviderRequestID.String(),
				"substatus":  substatus,
			},
		})
	}
	return nil
}

// completeVerification fetches the full detail record, extracts normalized
// fields and writes them onto the organization. Failures are logged and
// counted but never propagated: the webhook must still be acknowledged, and
// the data can be reconciled later via manual sync.
func (s *Service) completeVerification(ctx context.Context, session *models.VerificationSession, preloaded *provider.SessionDetails) {
	details := preloaded
	if details == nil {
		// Trailing webhooks may carry richer data than the one announcing
		// approval; give them a moment to land.
		s.waitDetailDelay(ctx)
		var err error
		obs := s.observeProvider("get_session_details")
		details, err = s.provider.GetSessionDetails(ctx, session.ProviderRequestID.String())
		obs()
		if err != nil {
			s.logger.WarnContext(ctx, "detail fetch after approval failed",
				"request_id", session.ProviderRequestID,
				"organization_id", session.OrganizationID,
				"error", err,
			)
			if s.metrics != nil {
				s.metrics.ExtractionFailures.Inc()
			}
			return
		}
	}

	current, err := s.sessions.FindByRequestID(ctx, session.ProviderRequestID)
	if err != nil {
		current = session
	}
	profile := extract.Profile(details, current.PayloadHistory)
	sophisticated, reason := extract.Sophistication(session.Kind.EntityKind(), profile.ComplianceDeclarations)
	if err := s.orgs.UpdateExtractedFields(ctx, session.OrganizationID, profile, sophisticated, reason); err != nil {
		s.logger.WarnContext(ctx, "writing extracted fields failed",
			"organization_id", session.OrganizationID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.ExtractionFailures.Inc()
		}
	}
}

// setOrganizationStatus writes the status only when it differs, so replayed
// webhooks leave no trace.
func (s *Service) setOrganizationStatus(ctx context.Context, orgID id.OrganizationID, target id.OnboardingStatus) error {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	if org.OnboardingStatus == target {
		return nil
	}
	if err := s.orgs.UpdateOnboardingStatus(ctx, orgID, target); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization status")
	}
	return nil
}

// applyProviderSettings re-registers the callback endpoint and form settings.
// Best-effort: the provider usually already holds valid configuration from a
// prior call, so failures are logged and counted, never propagated.
func (s *Service) applyProviderSettings(ctx context.Context, orgID id.OrganizationID) {
	obs := s.observeProvider("set_webhook_preferences")
	err := s.provider.SetWebhookPreferences(ctx, provider.WebhookPreferencesRequest{
		CallbackURL: s.callbackURL,
		Events:      []string{"verification.status"},
	})
	obs()
	if err != nil {
		s.logger.WarnContext(ctx, "webhook preference registration failed", "error", err)
		if s.metrics != nil {
			s.metrics.SettingsFailures.Inc()
		}
	}
	obs = s.observeProvider("set_form_settings")
	err = s.provider.SetFormSettings(ctx, provider.FormSettingsRequest{
		ReferenceID:      orgID.String(),
		AllowRetryUpload: true,
	})
	obs()
	if err != nil {
		s.logger.WarnContext(ctx, "form settings update failed", "error", err)
		if s.metrics != nil {
			s.metrics.SettingsFailures.Inc()
		}
	}
}

func (s *Service) authorizedOrganization(ctx context.Context, actor id.UserID, orgID id.OrganizationID) (*organization.Organization, error) {
	if orgID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "organization id is required")
	}
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	if org.OwnerUserID != actor {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not the organization owner")
	}
	return org, nil
}

// requireKindMatch rejects starting the wrong provider flow for the entity.
func requireKindMatch(entity id.EntityKind, kind id.OnboardingKind) error {
	if kind != "" && kind.EntityKind() != entity {
		return dErrors.New(dErrors.CodePreconditionFailed, "onboarding kind does not match entity kind")
	}
	return nil
}

func (s *Service) validateCallbackURL() error {
	u, err := url.Parse(s.callbackURL)
	if err != nil || u.Host == "" {
		return dErrors.New(dErrors.CodePreconditionFailed, "callback URL is not configured")
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !s.allowHTTP {
			return dErrors.New(dErrors.CodePreconditionFailed, "callback URL must use https")
		}
	default:
		return dErrors.New(dErrors.CodePreconditionFailed, "callback URL must use https")
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return dErrors.New(dErrors.CodePreconditionFailed, "callback URL is not publicly reachable")
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()) {
		return dErrors.New(dErrors.CodePreconditionFailed, "callback URL is not publicly reachable")
	}
	return nil
}

func (s *Service) waitDetailDelay(ctx context.Context) {
	if s.detailDelay <= 0 {
		return
	}
	t := time.NewTimer(s.detailDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// observeProvider times one outbound provider call; invoke the returned func
// when the call returns.
func (s *Service) observeProvider(operation string) func() {
	if s.metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() { s.metrics.ObserveProvider(operation, start) }
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditLog == nil {
		return
	}
	s.auditLog.Emit(ctx, event)
}

func linkTTL(resp *provider.CreateSessionResponse) time.Duration {
	ttl := int64(provider.DefaultLinkTTL)
	if resp.ExpiresIn != nil && *resp.ExpiresIn > 0 {
		ttl = *resp.ExpiresIn
	}
	return time.Duration(ttl) * time.Second
}

// providerCallError distinguishes "the provider is unreachable, try again"
// from everything else.
func providerCallError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
