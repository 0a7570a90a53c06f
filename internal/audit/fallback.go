package audit

import (
	"context"
	"log/slog"

	"farmshop/pkg/platform/circuit"
)

// FallbackStore sends events to primary and, when primary fails, to
// fallback. The breaker only tracks primary health for logging; every
// failed append goes to the fallback so no event is lost.
type FallbackStore struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackStore(primary, fallback Store, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FallbackStore) Append(ctx context.Context, event Event) error {
	err := s.primary.Append(ctx, event)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "audit sink recovered", "breaker", s.breaker.Name())
		}
		return nil
	}

	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "audit sink unhealthy, using fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	return s.fallback.Append(ctx, event)
}
