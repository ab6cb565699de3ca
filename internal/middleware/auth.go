// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenValidator resolves a bearer token to the user it belongs to.
type TokenValidator interface {
	// Validate returns the user ID the token was issued for. ok is false
	// for unknown or revoked tokens.
	Validate(token string) (userID string, ok bool)
}

// BearerAuth enforces bearer-token authentication on every request
// except the login endpoint, which must stay reachable without a token.
//
// On success the resolved user ID is stored in the request context so it
// can be used downstream as the authenticated user.
func BearerAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/users/login" {
				// Allow login without a token
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				http.Error(w, "no token provided", http.StatusUnauthorized)
				return
			}
			userID, ok := tokens.Validate(token)
			if !ok {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the
// request context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
