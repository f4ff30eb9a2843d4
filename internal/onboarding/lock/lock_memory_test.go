package lock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "fingate/pkg/domain"
	"fingate/pkg/platform/sentinel"
)

func TestInMemoryLockAcquireAndRelease(t *testing.T) {
	l := NewInMemoryLock()
	org := id.OrganizationID(uuid.New())
	ctx := context.Background()

	release, err := l.Acquire(ctx, org, id.PortalInvestor)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, org, id.PortalInvestor)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// Other portal and other organization are independent.
	otherRelease, err := l.Acquire(ctx, org, id.PortalIssuer)
	require.NoError(t, err)
	otherRelease()

	release()
	release2, err := l.Acquire(ctx, org, id.PortalInvestor)
	require.NoError(t, err)
	release2()
}

func TestInMemoryLockExpires(t *testing.T) {
	l := NewInMemoryLock()
	l.ttl = 10 * time.Millisecond
	org := id.OrganizationID(uuid.New())
	ctx := context.Background()

	_, err := l.Acquire(ctx, org, id.PortalInvestor)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	release, err := l.Acquire(ctx, org, id.PortalInvestor)
	require.NoError(t, err, "expired hold must not block a new acquire")
	release()
}
