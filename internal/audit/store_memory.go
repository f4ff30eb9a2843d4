package audit

import (
	"context"
	"sync"

	id "fingate/pkg/domain"
)

// InMemoryStore keeps audit events in order of arrival. Dev mode and tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByOrganization returns events for one organization, oldest first.
// Used by admin review and tests; the orchestrator never reads audit data.
func (s *InMemoryStore) ListByOrganization(_ context.Context, orgID id.OrganizationID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.OrganizationID == orgID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every recorded event. Test helper.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
