// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"livepoll/auth"
	"livepoll/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth validates the Bearer token and stores its claims in the
// request context. Missing or invalid credentials get a 401.
func RequireAuth(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			ErrorResponse(w, http.StatusUnauthorized, models.CodeUnauthorized, "Authorization token required")
			return
		}

		claims, err := auth.ParseToken(tokenStr, secret)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, models.CodeUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole is RequireAuth plus a role check; mismatches get a 403.
func RequireRole(secret, role string, next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(secret, func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || claims.Role != role {
			ErrorResponse(w, http.StatusForbidden, models.CodeForbidden, "Access denied")
			return
		}
		next(w, r)
	})
}

// ClaimsFromContext returns the authenticated claims, or nil when the
// request did not pass through RequireAuth.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
