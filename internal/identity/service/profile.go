package service

import (
	"context"
	"strings"

	"farmshop/internal/identity/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/requestcontext"
)

const maxProfileField = 200

func (s *Service) GetProfile(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return u, nil
}

// UpdateProfile replaces the caller's editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, in models.ProfileInput) (*models.User, error) {
	in = normalizeProfile(in)
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	in.Apply(u)
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, wrapUserErr(err)
	}
	return u, nil
}

func normalizeProfile(in models.ProfileInput) models.ProfileInput {
	for _, f := range []*string{&in.FirstName, &in.LastName, &in.Phone, &in.Address, &in.City, &in.State, &in.ZipCode} {
		*f = strings.TrimSpace(*f)
	}
	return in
}

func validateProfile(in models.ProfileInput) error {
	for _, f := range []string{in.FirstName, in.LastName, in.Phone, in.Address, in.City, in.State, in.ZipCode} {
		if len(f) > maxProfileField {
			return dErrors.New(dErrors.CodeValidation, "profile field too long")
		}
	}
	return nil
}
