// internal/auth/middleware.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookstore/internal/httputil"
)

type contextKey int

const principalKey contextKey = iota

// PrincipalFrom extracts the authenticated principal from the request context.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// Authenticate parses the Authorization header, verifies the bearer token and
// injects the resolved principal into the request context.
func Authenticate(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			principal, err := svc.ResolvePrincipal(r.Context(), token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "token expired"
				}
				httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", msg)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the principal's role. It must run after
// Authenticate.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
				return
			}
			if principal.Role != role {
				httputil.RespondError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
