// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package auth implements the admin authentication flow: handshake tokens
// that gate the login form, bcrypt credential verification, per-IP attempt
// throttling, and JWT session issuance and verification.
package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hashing time against login latency. The hash is
// computed once at startup from config, never stored.
const bcryptCost = 12

// CredentialStore verifies the single admin credential pair.
type CredentialStore struct {
	username     []byte
	passwordHash []byte
}

// NewCredentialStore hashes the configured password and returns a store
// for it.
func NewCredentialStore(username, password string) (*CredentialStore, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username must not be empty")
	}
	if password == "" {
		return nil, fmt.Errorf("admin password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &CredentialStore{
		username:     []byte(username),
		passwordHash: hash,
	}, nil
}

// Verify reports whether the given credentials match the admin account.
// Both the username comparison and the bcrypt comparison always run, so
// response timing does not reveal which of the two was wrong.
func (s *CredentialStore) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), s.username) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
