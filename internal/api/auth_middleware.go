package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stockpilot-io/stockpilot/internal/auth"
)

// requireAuth guards every protected route. It rejects the request before
// any handler runs unless the Authorization header carries a resolvable
// bearer token; on success the owning user is placed in the request context.
func (a *Api) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, kindUnauthenticated, "missing or malformed Authorization header")
			return
		}

		user, err := a.Auth.Resolve(token)
		if errors.Is(err, auth.ErrInvalidToken) {
			respondError(w, http.StatusUnauthorized, kindUnauthenticated, "invalid or expired token")
			return
		}
		if err != nil {
			respondStorageError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
