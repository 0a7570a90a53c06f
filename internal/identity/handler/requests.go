package handler

import (
	"net/url"
	"strconv"
	"strings"

	"farmshop/internal/identity/models"
	dErrors "farmshop/pkg/domain-errors"
)

const (
	defaultUserLimit = 100
	maxUserLimit     = 500
)

// CredentialsRequest is the body of POST /auth/signup and /auth/signin.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *CredentialsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = models.NormalizeEmail(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

// ProfileRequest carries the editable profile fields.
type ProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
}

func (r *ProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

func (r *ProfileRequest) input() models.ProfileInput {
	return models.ProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		ZipCode:   r.ZipCode,
	}
}

// AdminFlagRequest is the body of PATCH /admin/users/{id}/admin.
type AdminFlagRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

func (r *AdminFlagRequest) Validate() error {
	if r == nil || r.IsAdmin == nil {
		return dErrors.New(dErrors.CodeBadRequest, "is_admin is required")
	}
	return nil
}

func parseUserFilter(q url.Values) (models.UserFilter, error) {
	filter := models.UserFilter{
		Query: strings.TrimSpace(q.Get("q")),
		Limit: defaultUserLimit,
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive number")
		}
		filter.Limit = min(n, maxUserLimit)
	}
	return filter, nil
}
