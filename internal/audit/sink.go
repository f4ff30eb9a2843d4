package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fingate/pkg/requestcontext"
)

// Sink is an append-only event writer. Implementations: in-memory store,
// PostgreSQL store, Kafka publisher.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Emitter wraps a Sink with best-effort semantics: append failures are logged
// and counted, never propagated. Callers treat Emit as fire-and-forget
// relative to their primary operation.
type Emitter struct {
	sink      Sink
	logger    *slog.Logger
	onFailure func()
}

// NewEmitter builds an Emitter. onFailure is invoked once per failed append
// so failures stay observable in metrics; pass nil to skip counting.
func NewEmitter(sink Sink, logger *slog.Logger, onFailure func()) *Emitter {
	return &Emitter{sink: sink, logger: logger, onFailure: onFailure}
}

// Emit enriches and appends the event. Never returns an error.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil || e.sink == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Metadata == nil {
		event.Metadata = map[string]string{}
	}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		event.Metadata["request_id"] = reqID
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		event.Metadata["client_ip"] = ip
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		event.Metadata["user_agent"] = ua
	}

	// The sink gets its own deadline: audit must not stall the caller.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.sink.Append(appendCtx, event); err != nil {
		e.logger.WarnContext(ctx, "audit append failed",
			"event_type", event.Type,
			"organization_id", event.OrganizationID,
			"error", err,
		)
		if e.onFailure != nil {
			e.onFailure()
		}
	}
}
