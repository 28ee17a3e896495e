// Package publisher emits audit events to a store, either inline or through a
// buffered background worker.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "visitgate/pkg/domain"
	audit "visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/audit/worker"
	"visitgate/pkg/requestcontext"
)

// ErrBufferFull is returned by Emit in async mode when the queue is saturated.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	bufferSize int
	inbox      chan audit.Event
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a queue of size n.
// Async mode must not be used with stores that join the caller's transaction.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		w := worker.NewWorker(store, p.inbox, p.logger)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records event, filling in timestamp, category and request ID when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrBufferFull
}

// List returns the events recorded for an operator.
func (p *Publisher) List(ctx context.Context, actorID id.UserID) ([]audit.Event, error) {
	return p.store.ListByActor(ctx, actorID)
}

// Close stops accepting events and waits for the queue to drain.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
		}
		p.wg.Wait()
	})
}
