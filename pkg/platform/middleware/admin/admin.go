// Package admin guards back-office routes.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

// AdminChecker reads the current admin flag of a user from the profile store.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID id.UserID) (bool, error)
}

// RequireAdmin must run after auth.RequireAuth. The token's admin claim is
// not trusted on its own: the flag is re-read so revoked rights apply
// immediately.
func RequireAdmin(checker AdminChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)
			userID := requestcontext.UserID(ctx)
			if userID.IsNil() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			isAdmin, err := checker.IsAdmin(ctx, userID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to load admin flag",
					"error", err,
					"user_id", userID.String(),
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}
			if !isAdmin {
				logger.WarnContext(ctx, "admin access denied",
					"user_id", userID.String(),
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin access required"))
				return
			}

			ctx = requestcontext.WithAdmin(ctx, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
