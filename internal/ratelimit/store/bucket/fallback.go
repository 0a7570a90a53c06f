package bucket

import (
	"context"
	"log/slog"
	"time"

	"farmshop/internal/ratelimit/models"
	"farmshop/pkg/platform/circuit"
)

type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// FallbackStore checks primary and switches to the in-memory fallback
// once the breaker opens. Checks keep probing primary so the breaker can
// close again.
type FallbackStore struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallback(primary, fallback Store, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

// Degraded reports whether checks are currently answered by the fallback.
func (s *FallbackStore) Degraded() bool {
	return s.breaker.IsOpen()
}

func (s *FallbackStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	res, err := s.primary.Allow(ctx, key, limit, window)
	if err == nil {
		usePrimary, change := s.breaker.RecordSuccess()
		if change.Closed {
			s.logger.InfoContext(ctx, "rate limit store recovered", "breaker", s.breaker.Name())
		}
		if usePrimary {
			return res, nil
		}
		return s.fallback.Allow(ctx, key, limit, window)
	}

	_, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "rate limit store degraded, using in-memory fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	return s.fallback.Allow(ctx, key, limit, window)
}
