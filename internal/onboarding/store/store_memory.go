package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"fingate/internal/onboarding/models"
	id "fingate/pkg/domain"
	"fingate/pkg/platform/sentinel"
	"fingate/pkg/requestcontext"
)

type orgPortalKey struct {
	org    id.OrganizationID
	portal id.Portal
}

// InMemoryStore keeps sessions in maps. Used in dev mode and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.ProviderRequestID]*models.VerificationSession
	// byPair holds sessions per (organization, portal) in creation order.
	byPair map[orgPortalKey][]id.ProviderRequestID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[id.ProviderRequestID]*models.VerificationSession),
		byPair:   make(map[orgPortalKey][]id.ProviderRequestID),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, session *models.VerificationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ProviderRequestID]; exists {
		return sentinel.ErrConflict
	}
	key := orgPortalKey{org: session.OrganizationID, portal: session.Portal}
	for _, rid := range s.byPair[key] {
		if s.sessions[rid].IsActive() {
			return sentinel.ErrConflict
		}
	}
	now := requestcontext.Now(ctx)
	cp := copySession(session)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.sessions[session.ProviderRequestID] = cp
	s.byPair[key] = append(s.byPair[key], session.ProviderRequestID)
	return nil
}

func (s *InMemoryStore) FindByRequestID(_ context.Context, requestID id.ProviderRequestID) (*models.VerificationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copySession(session), nil
}

func (s *InMemoryStore) FindLatestByOrganization(_ context.Context, orgID id.OrganizationID, portal id.Portal) (*models.VerificationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byPair[orgPortalKey{org: orgID, portal: portal}]
	if len(ids) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return copySession(s.sessions[ids[len(ids)-1]]), nil
}

func (s *InMemoryStore) AppendPayload(ctx context.Context, requestID id.ProviderRequestID, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	session.PayloadHistory = append(session.PayloadHistory, append(json.RawMessage(nil), payload...))
	session.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func (s *InMemoryStore) UpdateStatus(ctx context.Context, requestID id.ProviderRequestID, status id.OnboardingStatus, substatus string, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	session.Status = status
	session.Substatus = substatus
	if completedAt != nil {
		t := *completedAt
		session.CompletedAt = &t
	}
	session.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func (s *InMemoryStore) UpdateVerifyLink(ctx context.Context, requestID id.ProviderRequestID, link string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	session.VerifyLink = link
	session.VerifyLinkExpiry = expiry
	session.CompletedAt = nil
	session.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func copySession(in *models.VerificationSession) *models.VerificationSession {
	cp := *in
	if in.PayloadHistory != nil {
		cp.PayloadHistory = make([]json.RawMessage, len(in.PayloadHistory))
		copy(cp.PayloadHistory, in.PayloadHistory)
	}
	if in.CompletedAt != nil {
		t := *in.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
