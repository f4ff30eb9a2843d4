package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and appends them to a store.
// It decouples request handling from slower sinks without a full queue.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Append failures are
// logged and dropped; audit is best-effort by design.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.Warn("audit worker append failed",
					"event_type", event.Type,
					"error", err,
				)
			}
		}
	}
}

// ChannelSink adapts a buffered channel to the Sink interface so emitters can
// hand events to the Worker. A full inbox drops the event rather than block.
type ChannelSink struct {
	inbox chan<- Event
}

func NewChannelSink(inbox chan<- Event) *ChannelSink {
	return &ChannelSink{inbox: inbox}
}

func (c *ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case c.inbox <- event:
		return nil
	default:
		return ErrInboxFull
	}
}
