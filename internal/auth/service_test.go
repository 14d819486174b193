// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/crumbcoat/crumbcoat/internal/config"
)

func testServiceConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Security: config.SecurityConfig{
			AdminUsername:    "admin",
			AdminPassword:    "sugar-and-spice",
			JWTSecret:        "test-jwt-secret",
			InternalAPIKey:   "test-internal-key",
			SessionTTL:       time.Hour,
			HandshakeTTL:     30 * time.Second,
			CookieSameSite:   "strict",
			MaxLoginAttempts: 5,
			AttemptWindow:    15 * time.Minute,
		},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(testServiceConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestServiceLoginSuccess(t *testing.T) {
	svc := newTestService(t)

	handshake, err := svc.Handshake()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := svc.Login("10.0.0.1", "admin", "sugar-and-spice", handshake)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("issued session should verify, got %v", err)
	}
	if claims.User != "admin" || claims.Role != AdminRole {
		t.Errorf("claims = %q/%q, want admin/admin", claims.User, claims.Role)
	}
}

func TestServiceLoginMissingHandshake(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login("10.0.0.1", "admin", "sugar-and-spice", "")
	if !errors.Is(err, ErrMissingHandshake) {
		t.Errorf("expected ErrMissingHandshake, got %v", err)
	}
}

func TestServiceLoginInvalidHandshake(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login("10.0.0.1", "admin", "sugar-and-spice", "bogus-token")
	if !errors.Is(err, ErrInvalidHandshake) {
		t.Errorf("expected ErrInvalidHandshake, got %v", err)
	}

	// An invalid handshake never counts against the attempt budget.
	if got := svc.attempts.Remaining("10.0.0.1"); got != 5 {
		t.Errorf("Remaining = %d, want 5", got)
	}
}

func TestServiceLoginInvalidCredentials(t *testing.T) {
	svc := newTestService(t)

	handshake, err := svc.Handshake()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Login("10.0.0.1", "admin", "wrong-password", handshake)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := svc.attempts.Remaining("10.0.0.1"); got != 4 {
		t.Errorf("Remaining = %d, want 4 after one failure", got)
	}
}

func TestServiceLoginThrottledAfterRepeatedFailures(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 5; i++ {
		handshake, err := svc.Handshake()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.Login("10.0.0.1", "admin", "wrong-password", handshake); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// The sixth attempt is throttled even with the correct password.
	handshake, err := svc.Handshake()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login("10.0.0.1", "admin", "sugar-and-spice", handshake); !errors.Is(err, ErrThrottled) {
		t.Errorf("expected ErrThrottled, got %v", err)
	}

	// A different IP is unaffected.
	if _, err := svc.Login("10.0.0.2", "admin", "sugar-and-spice", handshake); err != nil {
		t.Errorf("unrelated IP should log in, got %v", err)
	}
}

func TestServiceLoginSuccessResetsAttempts(t *testing.T) {
	svc := newTestService(t)

	handshake, err := svc.Handshake()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login("10.0.0.1", "admin", "wrong-password", handshake); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.Login("10.0.0.1", "admin", "sugar-and-spice", handshake); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := svc.attempts.Remaining("10.0.0.1"); got != 5 {
		t.Errorf("Remaining = %d, want 5 after successful login", got)
	}
}

func TestServiceVerifyRejectsHandshakeToken(t *testing.T) {
	svc := newTestService(t)

	handshake, err := svc.Handshake()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Handshake tokens are signed with a different key, so they can
	// never pass session verification.
	if _, err := svc.Verify(handshake); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}
