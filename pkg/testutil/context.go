package testutil

import (
	"net/http"

	id "farmshop/pkg/domain"
	"farmshop/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context, simulating what the auth
// middleware does for authenticated requests. Invalid IDs are ignored.
func WithUserID(req *http.Request, userID string) *http.Request {
	if parsed, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
	}
	return req
}

// WithAuth marks the request as authenticated for userID with the given admin flag.
func WithAuth(req *http.Request, userID id.UserID, admin bool) *http.Request {
	return req.WithContext(requestcontext.WithAuth(req.Context(), userID, admin, "test-jti"))
}

// WithCartSession attaches a cart session identifier to the request context.
func WithCartSession(req *http.Request, session string) *http.Request {
	return req.WithContext(requestcontext.WithCartSession(req.Context(), session))
}
