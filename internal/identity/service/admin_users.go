package service

import (
	"context"
	"errors"

	"farmshop/internal/audit"
	"farmshop/internal/identity/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/requestcontext"
)

func (s *Service) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// UpdateUser edits another user's profile from the back office.
func (s *Service) UpdateUser(ctx context.Context, userID id.UserID, in models.ProfileInput) (*models.User, error) {
	return s.UpdateProfile(ctx, userID, in)
}

// SetAdmin grants or revokes admin rights. Admins cannot revoke their own.
func (s *Service) SetAdmin(ctx context.Context, userID id.UserID, isAdmin bool) (*models.User, error) {
	actor := requestcontext.UserID(ctx)
	if userID == actor && !isAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "cannot revoke your own admin rights")
	}
	if err := s.users.SetAdmin(ctx, userID, isAdmin, requestcontext.Now(ctx)); err != nil {
		return nil, wrapUserErr(err)
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	s.audit.Record(ctx, audit.EventUserAdminChanged, actor, userID.String(),
		"email", u.Email,
		"is_admin", isAdmin,
	)
	return u, nil
}

// DeleteUser removes an account. Users cannot delete themselves and
// accounts with order history are kept.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	actor := requestcontext.UserID(ctx)
	if userID == actor {
		return dErrors.New(dErrors.CodeForbidden, "cannot delete your own account")
	}

	// capture before deletion for the audit event
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return wrapUserErr(err)
	}
	if s.orders != nil {
		n, err := s.orders.CountByUser(ctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count orders")
		}
		if n > 0 {
			return dErrors.New(dErrors.CodeConflict, "user has orders")
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "user has orders")
		}
		return wrapUserErr(err)
	}
	s.audit.Record(ctx, audit.EventUserDeleted, actor, userID.String(), "email", u.Email)
	return nil
}
