// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package api

import (
	"errors"
	"net/http"

	"github.com/crumbcoat/crumbcoat/internal/auth"
	"github.com/crumbcoat/crumbcoat/internal/logging"
	"github.com/crumbcoat/crumbcoat/internal/models"
	"github.com/crumbcoat/crumbcoat/internal/validation"
)

// Handshake handles GET /api/auth/handshake.
func (h *Handler) Handshake(w http.ResponseWriter, r *http.Request) {
	token, err := h.auth.Handshake()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to issue handshake")
		respondError(w, http.StatusInternalServerError, "Handshake error")
		return
	}

	respondJSON(w, http.StatusOK, models.HandshakeResponse{
		Success:   true,
		Handshake: token,
		ExpiresIn: h.auth.HandshakeTTL().Milliseconds(),
	})
}

// Login handles POST /api/auth/login. The throttle gate runs before the
// body is read: a locked-out IP gets 429 regardless of payload.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if h.auth.Throttled(ip) {
		respondError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	token, err := h.auth.Login(ip, req.Username, req.Password, req.Handshake)
	if err != nil {
		h.respondLoginError(w, err)
		return
	}

	resp := models.LoginResponse{
		Success:    true,
		ExpiresIn:  h.auth.SessionTTL().Milliseconds(),
		CookieAuth: h.auth.Cookies().Enabled,
		Message:    "Authentication successful",
	}
	if h.auth.Cookies().Enabled {
		h.setAuthCookie(w, token)
	} else {
		resp.Token = token
	}
	respondJSON(w, http.StatusOK, resp)
}

// respondLoginError maps login failures to the wire contract. Credential
// and handshake failures stay deliberately vague.
func (h *Handler) respondLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrThrottled):
		respondError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
	case errors.Is(err, auth.ErrMissingHandshake):
		respondError(w, http.StatusBadRequest, "Missing handshake token")
	case errors.Is(err, auth.ErrInvalidHandshake):
		respondError(w, http.StatusUnauthorized, "Handshake invalid or expired")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		logging.Error().Err(err).Msg("Login failed unexpectedly")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// VerifySession handles POST /api/auth/verify. The token may arrive in
// the body, the Authorization header, or the auth cookie.
func (h *Handler) VerifySession(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	_ = decodeJSON(r, &req) // an empty or absent body is fine

	token := req.Token
	if token == "" {
		token = auth.TokenFromRequest(r)
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	claims, err := h.auth.Verify(token)
	if errors.Is(err, auth.ErrSessionTooOld) {
		respondError(w, http.StatusUnauthorized, "Session expired")
		return
	}
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	respondJSON(w, http.StatusOK, models.VerifyResponse{
		Success: true,
		User:    claims.User,
		Role:    claims.Role,
		Message: "Token valid",
	})
}

// Logout handles POST /api/auth/logout. Bearer tokens cannot be revoked;
// in cookie mode the session cookie is cleared.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth.Cookies().Enabled {
		h.clearAuthCookie(w)
	}
	respondJSON(w, http.StatusOK, models.SimpleResponse{
		Success: true,
		Message: "Logout successful",
	})
}

// setAuthCookie writes the session cookie with the hardening flags from
// config.
func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	cookies := h.auth.Cookies()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   cookies.Domain,
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: cookies.SameSite,
	})
}

// clearAuthCookie expires the session cookie.
func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	cookies := h.auth.Cookies()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   cookies.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: cookies.SameSite,
	})
}
