package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"fingate/internal/audit"
	onbmetrics "fingate/internal/onboarding/metrics"
	"fingate/internal/onboarding/models"
	"fingate/internal/onboarding/provider"
	"fingate/internal/onboarding/status"
	"fingate/internal/onboarding/store"
	"fingate/internal/organization"
	id "fingate/pkg/domain"
	dErrors "fingate/pkg/domain-errors"
	"fingate/pkg/platform/sentinel"
)

// fakeProvider records calls and serves canned responses.
type fakeProvider struct {
	mu sync.Mutex

	createCalls   int
	restartCalls  int
	detailCalls   int
	settingsCalls int

	createResp  *provider.CreateSessionResponse
	createErr   error
	details     *provider.SessionDetails
	detailErr   error
	restartResp *provider.CreateSessionResponse
	restartErr  error
	settingsErr error
}

func (f *fakeProvider) CreateIndividualSession(_ context.Context, _ provider.CreateIndividualSessionRequest) (*provider.CreateSessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return f.createResp, f.createErr
}

func (f *fakeProvider) CreateCorporateSession(_ context.Context, _ provider.CreateCorporateSessionRequest) (*provider.CreateSessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return f.createResp, f.createErr
}

func (f *fakeProvider) GetSessionDetails(_ context.Context, _ string) (*provider.SessionDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return f.details, f.detailErr
}

func (f *fakeProvider) SetWebhookPreferences(_ context.Context, _ provider.WebhookPreferencesRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingsCalls++
	return f.settingsErr
}

func (f *fakeProvider) SetFormSettings(_ context.Context, _ provider.FormSettingsRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingsCalls++
	return f.settingsErr
}

func (f *fakeProvider) RestartSession(_ context.Context, _ provider.RestartSessionRequest) (*provider.CreateSessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restartCalls++
	return f.restartResp, f.restartErr
}

type ServiceSuite struct {
	suite.Suite

	ctx      context.Context
	sessions *store.InMemoryStore
	orgs     *organization.InMemoryStore
	fake     *fakeProvider
	trail    *audit.InMemoryStore
	svc      *Service

	owner id.UserID
	orgID id.OrganizationID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.sessions = store.NewInMemoryStore()
	s.orgs = organization.NewInMemoryStore()
	s.trail = audit.NewInMemoryStore()
	s.fake = &fakeProvider{
		createResp:  &provider.CreateSessionResponse{RequestID: "req-1", VerifyURL: "https://verify.example/req-1"},
		restartResp: &provider.CreateSessionResponse{RequestID: "req-1", VerifyURL: "https://verify.example/req-1-fresh"},
		details:     &provider.SessionDetails{RequestID: "req-1", Status: status.ProviderProcessing},
	}
	s.owner = id.UserID(uuid.New())
	s.orgID = id.OrganizationID(uuid.New())
	s.Require().NoError(s.orgs.Create(s.ctx, &organization.Organization{
		ID:               s.orgID,
		Kind:             id.EntityPersonal,
		OwnerUserID:      s.owner,
		Name:             "Siti Aminah",
		OnboardingStatus: id.StatusNotStarted,
	}))

	emitter := audit.NewEmitter(s.trail, slog.New(slog.DiscardHandler), nil)
	s.svc = NewService(s.sessions, s.orgs, s.fake, "https://fingate.example.com/webhooks/verification",
		WithAuditEmitter(emitter),
		WithLogger(slog.New(slog.DiscardHandler)),
		WithDetailFetchDelay(0),
	)
}

func (s *ServiceSuite) startInput() StartInput {
	return StartInput{
		OrganizationID: s.orgID,
		Portal:         id.PortalInvestor,
		Kind:           id.OnboardingIndividual,
		FirstName:      "Siti",
		LastName:       "Aminah",
	}
}

func (s *ServiceSuite) eventTypes() []audit.EventType {
	var types []audit.EventType
	for _, e := range s.trail.All() {
		types = append(types, e.Type)
	}
	return types
}

func (s *ServiceSuite) TestStartCreatesSession() {
	res, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.Equal(id.ProviderRequestID("req-1"), res.RequestID)
	s.Equal("https://verify.example/req-1", res.VerifyLink)
	s.Equal(id.StatusInProgress, res.Status, "personal entities start in progress")
	s.False(res.Resumed)
	s.False(res.VerifyLinkExpiry.IsZero())

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusInProgress, org.OnboardingStatus)

	s.Equal([]audit.EventType{audit.EventOnboardingStarted}, s.eventTypes())
}

func (s *ServiceSuite) TestStartCompanyBeginsPending() {
	companyID := id.OrganizationID(uuid.New())
	s.Require().NoError(s.orgs.Create(s.ctx, &organization.Organization{
		ID:          companyID,
		Kind:        id.EntityCompany,
		OwnerUserID: s.owner,
		Name:        "Acme Capital Sdn Bhd",
	}))

	res, err := s.svc.StartSession(s.ctx, s.owner, StartInput{
		OrganizationID: companyID,
		Portal:         id.PortalIssuer,
		Kind:           id.OnboardingCorporate,
		CompanyName:    "Acme Capital Sdn Bhd",
	})
	s.Require().NoError(err)
	s.Equal(id.StatusPending, res.Status)
}

func (s *ServiceSuite) TestStartTwiceResumesWithSameLink() {
	first, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)

	second, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.True(second.Resumed)
	s.Equal(first.RequestID, second.RequestID)
	s.Equal(first.VerifyLink, second.VerifyLink)
	s.Equal(1, s.fake.createCalls, "resume must not call the provider again")

	types := s.eventTypes()
	s.Equal([]audit.EventType{audit.EventOnboardingStarted, audit.EventOnboardingResumed}, types)
}

func (s *ServiceSuite) TestStartPastLivenessConflicts() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderLivenessPassed,
		Raw:       json.RawMessage(`{"status":"LIVENESS_PASSED"}`),
	}))

	_, err = s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(1, s.fake.createCalls)
}

func (s *ServiceSuite) TestStartNotOwnerForbidden() {
	_, err := s.svc.StartSession(s.ctx, id.UserID(uuid.New()), s.startInput())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Zero(s.fake.createCalls)
}

func (s *ServiceSuite) TestStartUnknownOrganization() {
	in := s.startInput()
	in.OrganizationID = id.OrganizationID(uuid.New())
	_, err := s.svc.StartSession(s.ctx, s.owner, in)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestStartCompletedOrganizationRejected() {
	s.Require().NoError(s.orgs.UpdateOnboardingStatus(s.ctx, s.orgID, id.StatusCompleted))
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	s.Zero(s.fake.createCalls)
}

func (s *ServiceSuite) TestStartKindMismatchRejected() {
	in := s.startInput()
	in.Kind = id.OnboardingCorporate
	_, err := s.svc.StartSession(s.ctx, s.owner, in)
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	s.Zero(s.fake.createCalls)
}

func (s *ServiceSuite) TestStartLocalCallbackRejectedBeforeProviderCall() {
	for _, callback := range []string{
		"http://localhost:8080/webhooks",
		"https://127.0.0.1/webhooks",
		"https://10.0.0.5/webhooks",
		"http://fingate.example.com/webhooks",
		"",
	} {
		svc := NewService(s.sessions, s.orgs, s.fake, callback,
			WithLogger(slog.New(slog.DiscardHandler)), WithDetailFetchDelay(0))
		_, err := svc.StartSession(s.ctx, s.owner, s.startInput())
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed), "callback %q", callback)
	}
	s.Zero(s.fake.createCalls, "no provider call may happen before callback validation")
}

func (s *ServiceSuite) TestStartProviderUnavailable() {
	s.fake.createErr = sentinel.ErrUnavailable
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	_, err = s.sessions.FindLatestByOrganization(s.ctx, s.orgID, id.PortalInvestor)
	s.ErrorIs(err, sentinel.ErrNotFound, "no session row without a provider session")
}

func (s *ServiceSuite) TestStartSettingsFailureDoesNotAbort() {
	s.fake.settingsErr = sentinel.ErrUnavailable
	res, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.Equal(id.ProviderRequestID("req-1"), res.RequestID)
}

func (s *ServiceSuite) TestWebhookStatusProgression() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.details = &provider.SessionDetails{RequestID: "req-1", Status: status.ProviderApproved}

	steps := []struct {
		providerStatus string
		wantSession    id.OnboardingStatus
		wantOrg        id.OnboardingStatus
	}{
		{status.ProviderProcessing, id.StatusFormFilling, id.StatusInProgress},
		{status.ProviderLivenessPassed, id.StatusLivenessPassed, id.StatusPendingApproval},
		{status.ProviderWaitForApproval, id.StatusPendingApproval, id.StatusPendingApproval},
		{status.ProviderApproved, id.StatusPendingAML, id.StatusPendingAML},
	}
	for _, step := range steps {
		err := s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
			RequestID: "req-1",
			Status:    step.providerStatus,
			Raw:       json.RawMessage(`{"status":"` + step.providerStatus + `"}`),
		})
		s.Require().NoError(err, step.providerStatus)

		session, err := s.sessions.FindByRequestID(s.ctx, "req-1")
		s.Require().NoError(err)
		s.Equal(step.wantSession, session.Status, step.providerStatus)
		s.NotEqual(id.OnboardingStatus("APPROVED"), session.Status)

		org, err := s.orgs.FindByID(s.ctx, s.orgID)
		s.Require().NoError(err)
		s.Equal(step.wantOrg, org.OnboardingStatus, step.providerStatus)
	}

	session, err := s.sessions.FindByRequestID(s.ctx, "req-1")
	s.Require().NoError(err)
	s.NotNil(session.CompletedAt, "provider approval completes the session")
	s.Len(session.PayloadHistory, 4)
}

func (s *ServiceSuite) TestWebhookRedeliveryIdempotent() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.details = &provider.SessionDetails{
		RequestID: "req-1",
		Status:    status.ProviderApproved,
		Profile:   &provider.DetailProfile{FullName: "Siti Aminah binti Abdullah"},
	}

	event := models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderApproved,
		Raw:       json.RawMessage(`{"status":"APPROVED"}`),
	}
	s.Require().NoError(s.svc.HandleWebhook(s.ctx, event))
	orgOnce, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, event))
	orgTwice, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)

	s.Equal(orgOnce.OnboardingStatus, orgTwice.OnboardingStatus)
	s.Equal(id.StatusPendingAML, orgTwice.OnboardingStatus)
	s.Equal(2, s.fake.detailCalls, "re-delivery re-runs extraction")
	s.Require().NotNil(orgTwice.Profile)
	s.Require().NotNil(orgTwice.Profile.FullName)
	s.Equal("Siti Aminah binti Abdullah", *orgTwice.Profile.FullName)
}

func (s *ServiceSuite) TestWebhookApprovedExtractsAndDeterminesSophistication() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.details = &provider.SessionDetails{
		RequestID: "req-1",
		Status:    status.ProviderApproved,
		Profile: &provider.DetailProfile{
			FirstName:   "Siti",
			LastName:    "Aminah",
			Nationality: "null",
		},
		DisplayAreas: map[string]json.RawMessage{
			provider.AreaComplianceDeclarations: json.RawMessage(`{"annual_income_above_threshold":"YES"}`),
		},
	}

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderApproved,
		Raw:       json.RawMessage(`{"status":"APPROVED"}`),
	}))

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusPendingAML, org.OnboardingStatus)
	s.Require().NotNil(org.Profile)
	s.Nil(org.Profile.Nationality)
	s.True(org.Sophisticated)
	s.Require().NotNil(org.SophisticatedReason)
	s.Contains(*org.SophisticatedReason, "RM300,000")
	s.Contains(s.eventTypes(), audit.EventVerificationCompleted)
}

func (s *ServiceSuite) TestWebhookDetailFetchFailureStillAcknowledged() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.details = nil
	s.fake.detailErr = sentinel.ErrUnavailable

	err = s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderApproved,
		Raw:       json.RawMessage(`{"status":"APPROVED"}`),
	})
	s.NoError(err, "detail failure must not fail the webhook")

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusPendingAML, org.OnboardingStatus, "status still advances; data reconciled via sync later")
	s.Nil(org.Profile)
}

func (s *ServiceSuite) TestWebhookRejectedTerminal() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderRejected,
		Substatus: "fraud_suspected",
		Raw:       json.RawMessage(`{"status":"REJECTED"}`),
	}))

	session, err := s.sessions.FindByRequestID(s.ctx, "req-1")
	s.Require().NoError(err)
	s.Equal(id.StatusRejected, session.Status)
	s.NotNil(session.CompletedAt)

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusRejected, org.OnboardingStatus)
	s.Contains(s.eventTypes(), audit.EventVerificationRejected)
}

func (s *ServiceSuite) TestWebhookStaleStatusAfterApprovalIgnored() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.details = &provider.SessionDetails{RequestID: "req-1", Status: status.ProviderApproved}

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderApproved,
		Raw:       json.RawMessage(`{"status":"APPROVED"}`),
	}))

	// Delivered out of order: the liveness event was emitted before approval
	// but arrives after it.
	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderLivenessPassed,
		Raw:       json.RawMessage(`{"status":"LIVENESS_PASSED"}`),
	}))

	session, err := s.sessions.FindByRequestID(s.ctx, "req-1")
	s.Require().NoError(err)
	s.Equal(id.StatusPendingAML, session.Status, "stale event must not reopen the session")
	s.NotNil(session.CompletedAt)
	s.Len(session.PayloadHistory, 2, "stale payload is still recorded")

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusPendingAML, org.OnboardingStatus, "organization must not move backwards")
}

func (s *ServiceSuite) TestWebhookStaleStatusAfterRejectionIgnored() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderRejected,
		Raw:       json.RawMessage(`{"status":"REJECTED"}`),
	}))
	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderWaitForApproval,
		Raw:       json.RawMessage(`{"status":"WAIT_FOR_APPROVAL"}`),
	}))

	session, err := s.sessions.FindByRequestID(s.ctx, "req-1")
	s.Require().NoError(err)
	s.Equal(id.StatusRejected, session.Status)
	s.NotNil(session.CompletedAt)

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusRejected, org.OnboardingStatus, "rejection is terminal")
}

func (s *ServiceSuite) TestWebhookUnknownStatusPassesThrough() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    "SOMETHING_NEW",
		Raw:       json.RawMessage(`{"status":"SOMETHING_NEW"}`),
	}))

	session, err := s.sessions.FindByRequestID(s.ctx, "req-1")
	s.Require().NoError(err)
	s.Equal(id.OnboardingStatus("SOMETHING_NEW"), session.Status)
	s.Nil(session.CompletedAt)
}

func (s *ServiceSuite) TestWebhookUnknownRequestID() {
	err := s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-ghost",
		Status:    status.ProviderProcessing,
		Raw:       json.RawMessage(`{"status":"PROCESSING"}`),
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Empty(s.trail.All(), "unknown webhook leaves no audit entry")

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusNotStarted, org.OnboardingStatus)
}

func (s *ServiceSuite) TestSyncSharesWebhookPath() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.details = &provider.SessionDetails{
		RequestID:  "req-1",
		Status:     status.ProviderWaitForApproval,
		RawPayload: json.RawMessage(`{"status":"WAIT_FOR_APPROVAL"}`),
	}

	session, err := s.svc.SyncStatus(s.ctx, s.owner, s.orgID, id.PortalInvestor)
	s.Require().NoError(err)
	s.Equal(id.StatusPendingApproval, session.Status)
	s.Len(session.PayloadHistory, 1, "sync records the detail payload")

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusPendingApproval, org.OnboardingStatus)
	s.Contains(s.eventTypes(), audit.EventOnboardingSynced)
}

func (s *ServiceSuite) TestSyncApprovedUsesFetchedDetails() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.details = &provider.SessionDetails{
		RequestID: "req-1",
		Status:    status.ProviderApproved,
		Profile:   &provider.DetailProfile{FullName: "Siti Aminah binti Abdullah"},
	}

	_, err = s.svc.SyncStatus(s.ctx, s.owner, s.orgID, id.PortalInvestor)
	s.Require().NoError(err)
	s.Equal(1, s.fake.detailCalls, "sync reuses the details it already fetched")

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusPendingAML, org.OnboardingStatus)
	s.Require().NotNil(org.Profile)
}

func (s *ServiceSuite) TestSyncWithoutSession() {
	_, err := s.svc.SyncStatus(s.ctx, s.owner, s.orgID, id.PortalInvestor)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRetryRefreshesLinkWithoutNewSession() {
	first, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.Require().NoError(s.svc.HandleWebhook(s.ctx, models.WebhookEvent{
		RequestID: "req-1",
		Status:    status.ProviderRejected,
		Raw:       json.RawMessage(`{"status":"REJECTED"}`),
	}))

	res, err := s.svc.Retry(s.ctx, s.owner, s.orgID, id.PortalInvestor)
	s.Require().NoError(err)
	s.Equal(first.RequestID, res.RequestID, "retry keeps the request id")
	s.Equal("https://verify.example/req-1-fresh", res.VerifyLink)
	s.Equal(id.StatusInProgress, res.Status)

	session, err := s.sessions.FindByRequestID(s.ctx, "req-1")
	s.Require().NoError(err)
	s.Nil(session.CompletedAt, "retried session is active again")
	s.Equal(id.StatusInProgress, session.Status)

	latest, err := s.sessions.FindLatestByOrganization(s.ctx, s.orgID, id.PortalInvestor)
	s.Require().NoError(err)
	s.Equal(first.RequestID, latest.ProviderRequestID, "no second session row")

	org, err := s.orgs.FindByID(s.ctx, s.orgID)
	s.Require().NoError(err)
	s.Equal(id.StatusInProgress, org.OnboardingStatus)
	s.Contains(s.eventTypes(), audit.EventOnboardingRetried)
	s.Equal(1, s.fake.restartCalls)
	s.Equal(1, s.fake.createCalls, "retry never creates a session")
}

func (s *ServiceSuite) TestRetryWithoutSession() {
	_, err := s.svc.Retry(s.ctx, s.owner, s.orgID, id.PortalInvestor)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Zero(s.fake.restartCalls)
}

func (s *ServiceSuite) TestRetryProviderUnavailable() {
	_, err := s.svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)
	s.fake.restartErr = sentinel.ErrUnavailable

	_, err = s.svc.Retry(s.ctx, s.owner, s.orgID, id.PortalInvestor)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestProviderCallDurationsObserved() {
	m := onbmetrics.New()
	svc := NewService(s.sessions, s.orgs, s.fake, "https://fingate.example.com/webhooks/verification",
		WithLogger(slog.New(slog.DiscardHandler)),
		WithDetailFetchDelay(0),
		WithMetrics(m),
	)

	_, err := svc.StartSession(s.ctx, s.owner, s.startInput())
	s.Require().NoError(err)

	s.Equal(3, promtestutil.CollectAndCount(m.ProviderDuration),
		"settings pair and session create are each timed")
}
