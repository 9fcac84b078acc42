package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dverney/todo-api/internal/auth"
	"github.com/dverney/todo-api/internal/models"
	"github.com/dverney/todo-api/internal/repo"
)

type ctxKey string

const userKey ctxKey = "current_user"

// GetUser returns the authenticated user stored by Authenticator.
func GetUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// WithUser returns a context carrying user, as Authenticator would set it.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// Authenticator resolves the caller from the Authorization header. The bearer
// token is verified, its subject is resolved to an active user, and the user
// is stored in the request context. Any verification or resolution failure is
// a single 401; an inactive account is a 400. The inactive check duplicates
// the repository's active filter on purpose: it is a policy gate, kept
// separate so deployments can treat "no such user" and "disabled user"
// differently.
func Authenticator(tokens *auth.TokenService, users *repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader || tokenStr == "" {
				unauthorized(w, "invalid authorization header")
				return
			}

			subject, err := tokens.Verify(tokenStr)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.GetByUsername(r.Context(), subject)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			if !user.IsActive {
				writeJSONError(w, "inactive user", http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, message, http.StatusUnauthorized)
}

// writeJSONError matches the handlers package's error body: an "error"
// category (the standard status text) and a human "message".
func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
