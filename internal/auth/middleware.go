// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// contextKey is a private type for context values to avoid collisions.
type contextKey string

// claimsContextKey stores the verified session claims on the request
// context.
const claimsContextKey contextKey = "session_claims"

// TokenFromRequest extracts a session token from the Authorization bearer
// header or, failing that, the auth cookie. Returns "" when neither is
// present.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if after, ok := strings.CutPrefix(header, "Bearer "); ok && after != "" {
			return after
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// ClaimsFromContext returns the session claims stored by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*SessionClaims)
	return claims, ok
}

// RequireAdmin rejects requests without a valid admin session. Verified
// claims are stored on the request context for downstream handlers.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			writeUnauthorized(w, "Authentication required")
			return
		}

		claims, err := s.Verify(token)
		if err != nil {
			writeUnauthorized(w, "Invalid or expired session")
			return
		}
		if claims.Role != AdminRole {
			writeUnauthorized(w, "Admin access required")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeUnauthorized writes a 401 with the standard error body. Kept local
// so the auth package does not depend on the api package's helpers.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"message": message,
	})
	_, _ = w.Write(body)
}
