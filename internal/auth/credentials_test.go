// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import "testing"

func TestCredentialStoreVerify(t *testing.T) {
	store, err := NewCredentialStore("admin", "correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"valid credentials", "admin", "correct horse battery staple", true},
		{"wrong password", "admin", "wrong", false},
		{"wrong username", "intruder", "correct horse battery staple", false},
		{"both wrong", "intruder", "wrong", false},
		{"empty credentials", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.Verify(tt.username, tt.password); got != tt.want {
				t.Errorf("Verify(%q, ...) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestNewCredentialStoreRejectsEmpty(t *testing.T) {
	if _, err := NewCredentialStore("", "password"); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := NewCredentialStore("admin", ""); err == nil {
		t.Error("expected error for empty password")
	}
}
