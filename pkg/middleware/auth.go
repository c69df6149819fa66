// Package middleware provides the HTTP middleware stack: request logging,
// panic recovery, CORS, rate limiting, and JWT authentication.
package middleware

import (
	"net/http"
	"strings"

	"github.com/matjarhq/matjar/pkg/auth"
	"github.com/matjarhq/matjar/pkg/response"
)

// Auth validates the Bearer token and stores the authenticated user's ID
// in the request context. Mutating catalog handlers read it back with
// auth.UserFromCtx — every created item records which operator submitted it.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.Replace(r.Header.Get("Authorization"), "Bearer ", "", 1)

		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := auth.WithUser(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
