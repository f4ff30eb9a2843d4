// Package lock serializes onboarding mutations per (organization, portal).
// The storage layer's uniqueness constraint is the real race guard; the lock
// exists so concurrent start and webhook handling don't interleave provider
// calls for the same organization.
package lock

import (
	"context"
	"time"

	id "fingate/pkg/domain"
)

// DefaultTTL bounds how long a crashed holder can block the pair.
const DefaultTTL = 30 * time.Second

// OrgLock is a best-effort advisory lock. Acquire returns a release func on
// success and sentinel.ErrConflict when the pair is already held.
type OrgLock interface {
	Acquire(ctx context.Context, orgID id.OrganizationID, portal id.Portal) (release func(), err error)
}

func lockKey(orgID id.OrganizationID, portal id.Portal) string {
	return "onboarding:lock:" + orgID.String() + ":" + portal.String()
}
