package adapters

import (
	"context"

	"farmshop/internal/admin"
	identitymodels "farmshop/internal/identity/models"
)

// IdentityUsers is the part of the identity service the dashboard reads.
type IdentityUsers interface {
	ListUsers(ctx context.Context, filter identitymodels.UserFilter) ([]*identitymodels.User, error)
}

// UserStoreAdapter maps identity users to dashboard users.
type UserStoreAdapter struct {
	users IdentityUsers
}

func NewUserStoreAdapter(users IdentityUsers) *UserStoreAdapter {
	return &UserStoreAdapter{users: users}
}

func (a *UserStoreAdapter) ListUsers(ctx context.Context) ([]*admin.DashboardUser, error) {
	users, err := a.users.ListUsers(ctx, identitymodels.UserFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]*admin.DashboardUser, 0, len(users))
	for _, u := range users {
		out = append(out, mapUser(u))
	}
	return out, nil
}

func mapUser(u *identitymodels.User) *admin.DashboardUser {
	return &admin.DashboardUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName(),
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
