package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "fingate/pkg/domain"
	"fingate/pkg/requestcontext"
)

type failingSink struct{ calls int }

func (f *failingSink) Append(context.Context, Event) error {
	f.calls++
	return errors.New("sink down")
}

func TestEmitterEnrichesEvent(t *testing.T) {
	store := NewInMemoryStore()
	emitter := NewEmitter(store, slog.Default(), nil)

	orgID := id.OrganizationID(uuid.New())
	ctx := requestcontext.WithRequestID(context.Background(), "req-123")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Chrome/120 (Linux)")

	emitter.Emit(ctx, Event{
		Type:           EventOnboardingStarted,
		Role:           RoleOwner,
		OrganizationID: orgID,
		Portal:         id.PortalInvestor,
	})

	events := store.All()
	require.Len(t, events, 1)
	got := events[0]
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "req-123", got.Metadata["request_id"])
	assert.Equal(t, "203.0.113.9", got.Metadata["client_ip"])
	assert.Equal(t, "Chrome/120 (Linux)", got.Metadata["user_agent"])
}

func TestEmitterNeverPropagatesFailures(t *testing.T) {
	sink := &failingSink{}
	var failures int
	emitter := NewEmitter(sink, slog.Default(), func() { failures++ })

	// Emit must not panic or surface the sink error.
	emitter.Emit(context.Background(), Event{
		Type:           EventOnboardingWebhook,
		Role:           RoleProvider,
		OrganizationID: id.OrganizationID(uuid.New()),
		Portal:         id.PortalInvestor,
	})

	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 1, failures)
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	inbox := make(chan Event, 1)
	sink := NewChannelSink(inbox)

	require.NoError(t, sink.Append(context.Background(), Event{Type: EventOnboardingStarted}))
	assert.ErrorIs(t, sink.Append(context.Background(), Event{Type: EventOnboardingStarted}), ErrInboxFull)
}

func TestWorkerDrainsInbox(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 4)
	worker := NewWorker(store, inbox, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	orgID := id.OrganizationID(uuid.New())
	inbox <- Event{Type: EventOnboardingStarted, OrganizationID: orgID}
	inbox <- Event{Type: EventOnboardingWebhook, OrganizationID: orgID}

	assert.Eventually(t, func() bool {
		return len(store.All()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	events, err := store.ListByOrganization(context.Background(), orgID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
