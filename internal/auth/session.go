// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSession covers expired, malformed, or wrongly-signed
	// session tokens.
	ErrInvalidSession = errors.New("invalid session token")

	// ErrSessionTooOld is returned when a token is otherwise valid but
	// was issued longer ago than the configured maximum session age.
	ErrSessionTooOld = errors.New("session exceeded maximum age")
)

// AdminRole is the role carried by every issued session. The site has a
// single admin account.
const AdminRole = "admin"

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	User string `json:"user"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates admin session tokens. There is no
// refresh and no revocation list; a token is valid until it expires or,
// when a maximum age is configured, until its issue time is too far in
// the past.
type SessionManager struct {
	secret []byte
	ttl    time.Duration

	// maxAge optionally caps session age below ttl. Zero disables it.
	maxAge time.Duration

	now func() time.Time
}

// NewSessionManager creates a manager signing with the JWT secret.
func NewSessionManager(secret string, ttl, maxAge time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// TTL returns the session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a session token for the given user.
func (m *SessionManager) Issue(username string) (string, error) {
	now := m.now()
	claims := SessionClaims{
		User: username,
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate checks a session token and returns its claims.
func (m *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	if m.maxAge > 0 && claims.IssuedAt != nil {
		if m.now().Sub(claims.IssuedAt.Time) > m.maxAge {
			return nil, ErrSessionTooOld
		}
	}

	return claims, nil
}
