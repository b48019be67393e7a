// Package middleware resolves the caller identity for protected routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/emrekaya/fridgemate/backend/internal/api"
	"github.com/emrekaya/fridgemate/backend/internal/auth"
)

// Auth mode names accepted by RequireAuth.
const (
	ModeJWT    = "jwt"
	ModeHeader = "header"
)

// RequireAuth returns middleware that resolves the caller identity and
// injects it into the request context.
//
// Modes:
//   - ModeHeader: trusts the x-user-id header verbatim (development only)
//   - ModeJWT: verifies `Authorization: Bearer <jwt>` whose claims carry
//     the user id
func RequireAuth(mode string, jwts *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mode == ModeHeader {
				userID := strings.TrimSpace(r.Header.Get("x-user-id"))
				if userID == "" {
					api.WriteError(w, r, api.Unauthorized())
					return
				}
				next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				api.WriteError(w, r, api.Unauthorized())
				return
			}
			token := strings.TrimSpace(header[len("bearer "):])

			claims, err := jwts.Validate(token)
			if err != nil {
				api.WriteError(w, r, api.Unauthorized())
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), claims.UserID)))
		})
	}
}
