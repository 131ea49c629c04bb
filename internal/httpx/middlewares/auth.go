// Package middlewares carries the HTTP middleware of the rewards API.
package middlewares

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kdiomande/rewards-platform/internal/auth"
)

// Authenticate validates the bearer token and attaches the resulting
// principal to the request context. Requests without a valid token are
// rejected with 401; capability checks happen later, per operation, inside
// the workflow services.
func Authenticate(validator *auth.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing Authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "invalid Authorization header format (expected 'Bearer <token>')")
				return
			}

			principal, err := validator.Validate(parts[1])
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": msg,
	})
}
