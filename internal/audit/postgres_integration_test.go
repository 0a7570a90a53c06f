//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"farmshop/internal/audit"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/tx"
	"farmshop/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	ctx := context.Background()
	userID := id.NewUserID()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Type:      audit.EventUserSignedUp,
		Timestamp: base,
		UserID:    userID,
		Subject:   userID.String(),
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Type:       audit.EventOrderPlaced,
		Timestamp:  base.Add(time.Minute),
		UserID:     userID,
		Subject:    "order-1",
		Attributes: map[string]string{"total": "249.00"},
		RequestID:  "req-1",
	}))

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.EventOrderPlaced, events[0].Type)
	s.Equal("249.00", events[0].Attributes["total"])
	s.Equal("req-1", events[0].RequestID)
	s.Equal(userID, events[1].UserID)
}

func (s *PostgresStoreSuite) TestAnonymousEvent() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Type:      audit.EventContactReceived,
		Timestamp: time.Now(),
		Subject:   "message-1",
	}))

	events, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.True(events[0].UserID.IsNil())
}

func (s *PostgresStoreSuite) TestRolledBackWithTransaction() {
	ctx := context.Background()
	runner := tx.NewSQLRunner(s.postgres.DB)

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Append(ctx, audit.Event{
			Type:      audit.EventOrderDeleted,
			Timestamp: time.Now(),
			Subject:   "order-2",
		}); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Require().ErrorIs(err, context.Canceled)

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Empty(events)
}
