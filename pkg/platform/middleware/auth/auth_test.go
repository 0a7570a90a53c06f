package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "farmshop/pkg/domain"
	"farmshop/pkg/requestcontext"
)

type stubValidator struct {
	claims *Claims
	err    error
}

func (s stubValidator) ValidateToken(string) (*Claims, error) { return s.claims, s.err }

type stubRevocations struct {
	revoked bool
	err     error
}

func (s stubRevocations) IsTokenRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := id.NewUserID()
	claims := &Claims{UserID: userID, IsAdmin: true, JTI: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}

	var gotUser id.UserID
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = requestcontext.UserID(r.Context())
		gotAdmin = requestcontext.IsAdmin(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		validator  stubValidator
		revoker    TokenRevocationChecker
		wantStatus int
	}{
		{"missing header", "", stubValidator{claims: claims}, nil, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("bad")}, nil, http.StatusUnauthorized},
		{"revoked token", "Bearer ok", stubValidator{claims: claims}, stubRevocations{revoked: true}, http.StatusUnauthorized},
		{"revocation lookup fails", "Bearer ok", stubValidator{claims: claims}, stubRevocations{err: errors.New("redis down")}, http.StatusInternalServerError},
		{"valid token", "Bearer ok", stubValidator{claims: claims}, stubRevocations{}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			RequireAuth(tt.validator, tt.revoker, logger)(next).ServeHTTP(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	assert.Equal(t, userID, gotUser)
	assert.True(t, gotAdmin)
}
