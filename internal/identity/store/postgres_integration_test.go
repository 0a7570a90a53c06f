//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"farmshop/internal/identity/models"
	"farmshop/internal/identity/store"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/testutil/containers"
)

type PostgresUserSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresUserSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserSuite))
}

func (s *PostgresUserSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "order_items", "orders", "users"))
}

func (s *PostgresUserSuite) create(email, first, last string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		FirstName:    first,
		LastName:     last,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.store.Create(context.Background(), u))
	return u
}

func (s *PostgresUserSuite) TestCreateAndFind() {
	ctx := context.Background()
	u := s.create("jana@farma.cz", "Jana", "Nováková")

	got, err := s.store.FindByEmail(ctx, "jana@farma.cz")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
	s.Equal("$2a$10$hash", got.PasswordHash)

	err = s.store.Create(ctx, &models.User{ID: id.NewUserID(), Email: "jana@farma.cz", CreatedAt: time.Now(), UpdatedAt: time.Now()})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	_, err = s.store.FindByID(ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresUserSuite) TestSearch() {
	ctx := context.Background()
	s.create("jana@farma.cz", "Jana", "Nováková")
	s.create("petr@seznam.cz", "Petr", "Svoboda")

	byName, err := s.store.List(ctx, models.UserFilter{Query: "petr svo"})
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Equal("petr@seznam.cz", byName[0].Email)

	byEmail, err := s.store.List(ctx, models.UserFilter{Query: "FARMA"})
	s.Require().NoError(err)
	s.Len(byEmail, 1)

	limited, err := s.store.List(ctx, models.UserFilter{Limit: 1})
	s.Require().NoError(err)
	s.Len(limited, 1)
}

func (s *PostgresUserSuite) TestProfileAndAdmin() {
	ctx := context.Background()
	u := s.create("jana@farma.cz", "Jana", "N")
	u.City = "Tábor"
	u.UpdatedAt = time.Now()
	s.Require().NoError(s.store.UpdateProfile(ctx, u))
	s.Require().NoError(s.store.SetAdmin(ctx, u.ID, true, time.Now()))

	got, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Tábor", got.City)
	s.True(got.IsAdmin)

	s.Require().NoError(s.store.Delete(ctx, u.ID))
	s.ErrorIs(s.store.Delete(ctx, u.ID), sentinel.ErrNotFound)
}
