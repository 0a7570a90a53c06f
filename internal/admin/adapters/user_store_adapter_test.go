package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymodels "farmshop/internal/identity/models"
	"farmshop/internal/identity/store"
	id "farmshop/pkg/domain"
)

func TestUserStoreAdapter(t *testing.T) {
	ctx := context.Background()
	users := store.NewInMemory()
	require.NoError(t, users.Create(ctx, &identitymodels.User{
		ID:           id.NewUserID(),
		Email:        "jana@example.cz",
		PasswordHash: "secret-hash",
		FirstName:    "Jana",
		LastName:     "Nováková",
		IsAdmin:      true,
	}))

	out, err := NewUserStoreAdapter(listFunc(users.List)).ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Jana Nováková", out[0].FullName)
	assert.True(t, out[0].IsAdmin)
}

type listFunc func(ctx context.Context, filter identitymodels.UserFilter) ([]*identitymodels.User, error)

func (f listFunc) ListUsers(ctx context.Context, filter identitymodels.UserFilter) ([]*identitymodels.User, error) {
	return f(ctx, filter)
}
