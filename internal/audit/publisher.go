package audit

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"farmshop/pkg/attrs"
	id "farmshop/pkg/domain"
	"farmshop/pkg/requestcontext"
)

// Publisher captures domain events. In async mode events are queued on a
// buffered channel and a Worker appends them; a full buffer falls back to a
// synchronous append.
type Publisher struct {
	store  Store
	logger *slog.Logger

	mu     sync.RWMutex
	inbox  chan Event
	done   chan struct{}
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async mode with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan Event, size)
		}
	}
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		worker := NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			worker.Drain(context.Background())
		}()
	}
	return p
}

// Emit stamps the event with the request time and ID, then appends it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	p.mu.RLock()
	if p.inbox != nil && !p.closed {
		select {
		case p.inbox <- event:
			p.mu.RUnlock()
			return nil
		default:
		}
	}
	p.mu.RUnlock()
	return p.store.Append(ctx, event)
}

// Record builds an event from slog-style key/value pairs and emits it.
// Failures are logged, never returned: audit must not fail the business
// operation.
func (p *Publisher) Record(ctx context.Context, eventType EventType, userID id.UserID, subject string, kv ...any) {
	if p == nil {
		return
	}
	event := Event{
		Type:       eventType,
		UserID:     userID,
		Subject:    subject,
		Attributes: attrs.ToMap(kv),
	}
	if err := p.Emit(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "failed to emit audit event",
			"type", eventType,
			"subject", subject,
			"email", attrs.ExtractString(kv, "email"),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// Close stops accepting async events and waits for the buffer to drain.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed || p.inbox == nil {
		p.closed = true
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()
	<-p.done
}
