// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/crumbcoat/crumbcoat/internal/config"
	"github.com/crumbcoat/crumbcoat/internal/logging"
	"github.com/crumbcoat/crumbcoat/internal/metrics"
)

var (
	// ErrThrottled is returned when an IP has exhausted its login
	// attempts for the current window.
	ErrThrottled = errors.New("too many login attempts")

	// ErrMissingHandshake is returned when a login request carries no
	// handshake token at all.
	ErrMissingHandshake = errors.New("handshake token required")

	// ErrInvalidCredentials is returned for any username/password
	// mismatch. Callers must not distinguish which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CookieConfig is the startup-resolved token delivery strategy. When
// Enabled is false, login responses carry the token in the body and the
// cookie is never set.
type CookieConfig struct {
	Enabled  bool
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// CookieName is the session cookie written in cookie mode.
const CookieName = "auth_token"

// Service wires the authentication pieces together. One instance lives
// for the whole process; handlers receive it explicitly.
type Service struct {
	creds      *CredentialStore
	handshakes *HandshakeIssuer
	attempts   *AttemptTracker
	sessions   *SessionManager
	cookies    CookieConfig
}

// NewService builds the auth service from configuration.
func NewService(cfg *config.Config) (*Service, error) {
	creds, err := NewCredentialStore(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
	if err != nil {
		return nil, err
	}

	return &Service{
		creds:      creds,
		handshakes: NewHandshakeIssuer(cfg.Security.InternalAPIKey, cfg.Security.HandshakeTTL),
		attempts:   NewAttemptTracker(cfg.Security.MaxLoginAttempts, cfg.Security.AttemptWindow),
		sessions:   NewSessionManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL, cfg.Security.SessionMaxAge),
		cookies: CookieConfig{
			Enabled:  cfg.Security.CookieAuth,
			Secure:   cfg.Security.CookieSecure,
			SameSite: cfg.Security.SameSite(),
			Domain:   cfg.Security.CookieDomain,
		},
	}, nil
}

// Cookies returns the token delivery strategy.
func (s *Service) Cookies() CookieConfig {
	return s.cookies
}

// SessionTTL returns the session token lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

// HandshakeTTL returns the handshake validity window.
func (s *Service) HandshakeTTL() time.Duration {
	return s.handshakes.TTL()
}

// Handshake issues a new handshake token.
func (s *Service) Handshake() (string, error) {
	token, err := s.handshakes.Issue()
	if err != nil {
		return "", err
	}
	metrics.RecordHandshakeIssued()
	return token, nil
}

// Throttled reports whether the IP is currently locked out. Handlers
// call this before reading the request body so a locked-out client is
// rejected no matter what it sends.
func (s *Service) Throttled(ip string) bool {
	if !s.attempts.Locked(ip) {
		return false
	}
	metrics.RecordLoginAttempt("throttled")
	logging.Warn().Str("ip", ip).Msg("Login throttled")
	return true
}

// Login runs the full login sequence for one request. The throttle gate
// runs before any credential work so a locked-out IP learns nothing about
// credential validity, and an invalid handshake never counts against the
// attempt budget.
func (s *Service) Login(ip, username, password, handshake string) (string, error) {
	if s.Throttled(ip) {
		return "", ErrThrottled
	}

	if handshake == "" {
		return "", ErrMissingHandshake
	}
	if err := s.handshakes.Validate(handshake); err != nil {
		metrics.RecordLoginAttempt("invalid_handshake")
		logging.Warn().Str("ip", ip).Msg("Login with invalid handshake")
		return "", err
	}

	if !s.creds.Verify(username, password) {
		s.attempts.RecordFailure(ip)
		metrics.RecordLoginAttempt("invalid_credentials")
		logging.Warn().Str("ip", ip).Int("remaining", s.attempts.Remaining(ip)).Msg("Login failed")
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(username)
	if err != nil {
		return "", err
	}

	s.attempts.Reset(ip)
	metrics.RecordLoginAttempt("success")
	logging.Info().Str("user", username).Msg("Admin logged in")
	return token, nil
}

// Verify validates a session token and returns its claims.
func (s *Service) Verify(token string) (*SessionClaims, error) {
	return s.sessions.Validate(token)
}

// StartCleanup launches the attempt-tracker eviction loop.
func (s *Service) StartCleanup(ctx context.Context, interval time.Duration) {
	s.attempts.StartCleanup(ctx, interval)
}
