package organization

import (
	"context"
	"sync"

	id "fingate/pkg/domain"
	"fingate/pkg/platform/sentinel"
	"fingate/pkg/requestcontext"
)

// InMemoryStore keeps organizations in a map. Used in dev mode and tests.
type InMemoryStore struct {
	mu   sync.RWMutex
	orgs map[id.OrganizationID]*Organization
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orgs: make(map[id.OrganizationID]*Organization)}
}

func (s *InMemoryStore) Create(ctx context.Context, org *Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[org.ID]; exists {
		return sentinel.ErrConflict
	}
	now := requestcontext.Now(ctx)
	cp := *org
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.orgs[org.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, orgID id.OrganizationID) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (s *InMemoryStore) UpdateOnboardingStatus(ctx context.Context, orgID id.OrganizationID, status id.OnboardingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[orgID]
	if !ok {
		return sentinel.ErrNotFound
	}
	org.OnboardingStatus = status
	org.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func (s *InMemoryStore) UpdateExtractedFields(ctx context.Context, orgID id.OrganizationID, profile *KYCProfile, sophisticated bool, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[orgID]
	if !ok {
		return sentinel.ErrNotFound
	}
	org.Profile = profile
	org.Sophisticated = sophisticated
	org.SophisticatedReason = reason
	org.UpdatedAt = requestcontext.Now(ctx)
	return nil
}
