// Package middleware provides HTTP middlewares for sessions, access control,
// CSRF protection and request logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTweeter/internal/server/flash"
	"github.com/atinyakov/GophTweeter/internal/session"
)

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "session_token"
)

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "session"

// Sessions resolves the session cookie into a user ID and stores it in the
// request context. Missing, expired or forged cookies leave the request
// anonymous; store failures abort with 500.
func Sessions(store session.Store, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := store.Lookup(r.Context(), c.Value)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					next.ServeHTTP(w, r)
					return
				}
				log.Error("session lookup failed", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = context.WithValue(ctx, tokenKey, c.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser redirects anonymous requests to redirectTo with a warning
// flash before the wrapped handler runs.
func RequireUser(redirectTo, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				flash.Set(w, r, flash.Danger, message)
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying userID as the authenticated user.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserIDFromContext extracts the authenticated user ID from the request
// context. ok is false for anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userKey).(int64)
	return id, ok
}

// SessionTokenFromContext returns the raw session token of the request, or
// an empty string if there is none.
func SessionTokenFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(tokenKey).(string); ok {
		return s
	}
	return ""
}
