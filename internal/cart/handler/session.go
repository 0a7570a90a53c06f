package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"farmshop/pkg/requestcontext"
)

const (
	CookieName    = "farm_shop_cart"
	HeaderSession = "X-Cart-Session"

	cookieMaxAge = 365 * 24 * time.Hour
)

// Session resolves the cart session from the X-Cart-Session header or the
// farm_shop_cart cookie, issuing a new cookie when neither carries a valid
// id. The session id is echoed in the response header.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromRequest(r)
		if session == "" {
			session = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    session,
				Path:     "/",
				MaxAge:   int(cookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(HeaderSession, session)
		ctx := requestcontext.WithCartSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromRequest(r *http.Request) string {
	if v := r.Header.Get(HeaderSession); validSession(v) {
		return v
	}
	if c, err := r.Cookie(CookieName); err == nil && validSession(c.Value) {
		return c.Value
	}
	return ""
}

func validSession(v string) bool {
	if v == "" {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}
