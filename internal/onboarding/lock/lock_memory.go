package lock

import (
	"context"
	"sync"
	"time"

	id "fingate/pkg/domain"
	"fingate/pkg/platform/sentinel"
)

// InMemoryLock is the single-process fallback used when Redis is not
// configured. Entries expire after ttl so a leaked hold cannot wedge the pair.
type InMemoryLock struct {
	mu   sync.Mutex
	held map[string]time.Time
	ttl  time.Duration
}

func NewInMemoryLock() *InMemoryLock {
	return &InMemoryLock{held: make(map[string]time.Time), ttl: DefaultTTL}
}

func (l *InMemoryLock) Acquire(_ context.Context, orgID id.OrganizationID, portal id.Portal) (func(), error) {
	key := lockKey(orgID, portal)
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiry, ok := l.held[key]; ok && time.Now().Before(expiry) {
		return nil, sentinel.ErrConflict
	}
	l.held[key] = time.Now().Add(l.ttl)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}
