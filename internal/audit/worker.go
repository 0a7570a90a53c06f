package audit

import (
	"context"
	"log/slog"
)

// Worker drains events from a channel into a store. Append failures are
// logged and the worker keeps going.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until the inbox is closed or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.append(ctx, event)
		}
	}
}

// Drain consumes every buffered event until the inbox is closed.
func (w *Worker) Drain(ctx context.Context) {
	for event := range w.inbox {
		w.append(ctx, event)
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.WarnContext(ctx, "failed to append audit event",
			"type", event.Type,
			"subject", event.Subject,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
