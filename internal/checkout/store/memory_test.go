package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmshop/internal/checkout"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		s := NewInMemory()
		_, err := s.Get(ctx, "checkout:nope")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("saved sessions are copies", func(t *testing.T) {
		s := NewInMemory()
		sess := &checkout.Session{
			Step:          checkout.StepReviewingSummary,
			JustCompleted: &checkout.Completion{OrderID: id.NewOrderID(), OrderNumber: 3},
		}
		require.NoError(t, s.Save(ctx, "k", sess))
		sess.JustCompleted.OrderNumber = 99

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, checkout.StepReviewingSummary, got.Step)
		assert.Equal(t, int64(3), got.JustCompleted.OrderNumber)
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		s := NewInMemory()
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }
		require.NoError(t, s.Save(ctx, "k", &checkout.Session{Step: checkout.StepCollectingShipping}))

		now = now.Add(SessionTTL - time.Second)
		_, err := s.Get(ctx, "k")
		require.NoError(t, err)

		now = now.Add(2 * time.Second)
		_, err = s.Get(ctx, "k")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("configured ttl replaces the default", func(t *testing.T) {
		s := NewInMemory().WithTTL(time.Minute)
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }
		require.NoError(t, s.Save(ctx, "k", &checkout.Session{}))

		now = now.Add(2 * time.Minute)
		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Save(ctx, "k", &checkout.Session{}))
		require.NoError(t, s.Delete(ctx, "k"))
		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
