package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gourmet-kitchen/ordersys/internal/auth"
)

type ctxKey struct{}

type errorBody struct {
	Error string `json:"error"`
}

// Authenticate requires a valid session token in the Authorization header
// and stores its claims on the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				deny(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			token, ok := auth.BearerToken(raw)
			if !ok {
				deny(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				// Screens re-prompt for the PIN on an expired session.
				msg := "invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = auth.ErrTokenExpired.Error()
				}
				deny(w, http.StatusUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

// RequireRole lets the request through only for sessions holding one of
// roles. It must run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			switch {
			case claims == nil:
				deny(w, http.StatusUnauthorized, "not authenticated")
			case !claims.HasRole(roles...):
				deny(w, http.StatusForbidden, "insufficient permissions")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// Passthrough stands in for the auth middleware when the PIN lock is off.
func Passthrough(next http.Handler) http.Handler {
	return next
}

// ClaimsFromContext returns the session claims, or nil on an open terminal.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ctxKey{}).(*auth.Claims)
	return claims
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
