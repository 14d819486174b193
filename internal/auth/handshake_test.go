// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestHandshakeIssueAndValidate(t *testing.T) {
	issuer := NewHandshakeIssuer("test-internal-key", 30*time.Second)

	token, err := issuer.Issue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	if err := issuer.Validate(token); err != nil {
		t.Errorf("fresh handshake should validate, got %v", err)
	}
}

func TestHandshakeExpiry(t *testing.T) {
	issuer := NewHandshakeIssuer("test-internal-key", 30*time.Second)

	base := time.Now()
	issuer.now = func() time.Time { return base }

	token, err := issuer.Issue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Just inside the window.
	issuer.now = func() time.Time { return base.Add(29 * time.Second) }
	if err := issuer.Validate(token); err != nil {
		t.Errorf("handshake should still be valid at 29s, got %v", err)
	}

	// Past the window.
	issuer.now = func() time.Time { return base.Add(31 * time.Second) }
	if err := issuer.Validate(token); !errors.Is(err, ErrInvalidHandshake) {
		t.Errorf("expected ErrInvalidHandshake after expiry, got %v", err)
	}
}

func TestHandshakeWrongKey(t *testing.T) {
	issuer := NewHandshakeIssuer("key-one", 30*time.Second)
	other := NewHandshakeIssuer("key-two", 30*time.Second)

	token, err := issuer.Issue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := other.Validate(token); !errors.Is(err, ErrInvalidHandshake) {
		t.Errorf("expected ErrInvalidHandshake for wrong key, got %v", err)
	}
}

func TestHandshakeRejectsSessionToken(t *testing.T) {
	// A session token signed with the same key must not pass as a
	// handshake; the type claim is what separates them.
	issuer := NewHandshakeIssuer("shared-key", 30*time.Second)
	sessions := NewSessionManager("shared-key", time.Hour, 0)

	token, err := sessions.Issue("admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := issuer.Validate(token); !errors.Is(err, ErrInvalidHandshake) {
		t.Errorf("expected ErrInvalidHandshake for session token, got %v", err)
	}
}

func TestHandshakeNoncesDistinct(t *testing.T) {
	issuer := NewHandshakeIssuer("test-internal-key", 30*time.Second)

	first, err := issuer.Issue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := issuer.Issue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first == second {
		t.Error("two handshakes issued back to back should carry distinct nonces")
	}
}

func TestHandshakeRejectsGarbage(t *testing.T) {
	issuer := NewHandshakeIssuer("test-internal-key", 30*time.Second)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if err := issuer.Validate(token); !errors.Is(err, ErrInvalidHandshake) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidHandshake", token, err)
		}
	}
}
