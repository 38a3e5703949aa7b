package auth

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

type contextKey string

// UserIDKey is the context key under which middleware stores the
// authenticated user id.
const UserIDKey = contextKey("userID")

// WithUser resolves the session's user id, if any, into the request
// context. It never rejects: anonymous requests pass through untouched.
func WithUser(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := SessionUserID(r.Context(), sm); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests that carry no authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"field":"session","message":"not authenticated"}]}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext extracts the authenticated user id placed by WithUser.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
