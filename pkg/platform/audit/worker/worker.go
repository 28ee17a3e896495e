package worker

import (
	"context"
	"log/slog"

	audit "visitgate/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Run returns
// once the inbox is closed and drained, or when ctx is cancelled.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				// A failed append must not stall the queue behind it.
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"action", event.Action,
					"subject", event.Subject,
					"error", err,
				)
			}
		}
	}
}
