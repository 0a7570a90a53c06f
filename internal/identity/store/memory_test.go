package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmshop/internal/identity/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

func user(email, first, last string) *models.User {
	return &models.User{ID: id.NewUserID(), Email: email, FirstName: first, LastName: last, CreatedAt: time.Now()}
}

func TestInMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	jana := user("jana@farma.cz", "Jana", "Nováková")
	require.NoError(t, s.Create(ctx, jana))
	require.NoError(t, s.Create(ctx, user("petr@farma.cz", "Petr", "Svoboda")))

	t.Run("email is unique", func(t *testing.T) {
		err := s.Create(ctx, user("jana@farma.cz", "", ""))
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("find by email returns a copy", func(t *testing.T) {
		got, err := s.FindByEmail(ctx, "jana@farma.cz")
		require.NoError(t, err)
		got.FirstName = "changed"
		again, err := s.FindByID(ctx, jana.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jana", again.FirstName)
	})

	t.Run("search matches full name", func(t *testing.T) {
		got, err := s.List(ctx, models.UserFilter{Query: "jana nov"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, jana.ID, got[0].ID)

		all, err := s.List(ctx, models.UserFilter{})
		require.NoError(t, err)
		assert.Equal(t, "jana@farma.cz", all[0].Email)
	})

	t.Run("update profile leaves email and admin alone", func(t *testing.T) {
		patch := *jana
		patch.City = "Tábor"
		patch.Email = "other@farma.cz"
		patch.IsAdmin = true
		require.NoError(t, s.UpdateProfile(ctx, &patch))

		got, err := s.FindByID(ctx, jana.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tábor", got.City)
		assert.Equal(t, "jana@farma.cz", got.Email)
		assert.False(t, got.IsAdmin)
	})

	t.Run("set admin and delete", func(t *testing.T) {
		require.NoError(t, s.SetAdmin(ctx, jana.ID, true, time.Now()))
		got, err := s.FindByID(ctx, jana.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin)

		require.NoError(t, s.Delete(ctx, jana.ID))
		assert.ErrorIs(t, s.Delete(ctx, jana.ID), sentinel.ErrNotFound)
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestInMemoryTRL(t *testing.T) {
	ctx := context.Background()
	trl := NewInMemoryTRL()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	trl.now = func() time.Time { return now }

	require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err := trl.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = trl.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry expires with the token")

	assert.ErrorIs(t, trl.RevokeToken(ctx, "jti-2", 0), sentinel.ErrInvalidState)
	assert.NoError(t, trl.RevokeToken(ctx, "", time.Minute))
}
