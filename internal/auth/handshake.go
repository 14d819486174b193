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

// ErrInvalidHandshake covers expired, malformed, or wrongly-signed
// handshake tokens.
var ErrInvalidHandshake = errors.New("invalid handshake token")

// handshakeTokenType distinguishes handshake tokens from session tokens;
// a session token presented as a handshake fails the type check even
// though both are JWTs.
const handshakeTokenType = "handshake"

// handshakeClaims is the payload of a handshake token.
type handshakeClaims struct {
	Type  string `json:"type"`
	Nonce int64  `json:"nonce"`
	jwt.RegisteredClaims
}

// HandshakeIssuer mints and validates the short-lived tokens the login
// form must obtain before submitting credentials. Tokens are stateless:
// the server keeps no record, so a handshake is replayable within its
// validity window.
type HandshakeIssuer struct {
	key []byte
	ttl time.Duration

	now func() time.Time
}

// NewHandshakeIssuer creates an issuer signing with the internal API key.
func NewHandshakeIssuer(key string, ttl time.Duration) *HandshakeIssuer {
	return &HandshakeIssuer{
		key: []byte(key),
		ttl: ttl,
		now: time.Now,
	}
}

// TTL returns the handshake validity window.
func (h *HandshakeIssuer) TTL() time.Duration {
	return h.ttl
}

// Issue mints a new handshake token. The nanosecond nonce keeps tokens
// issued within the same second distinct.
func (h *HandshakeIssuer) Issue() (string, error) {
	now := h.now()
	claims := handshakeClaims{
		Type:  handshakeTokenType,
		Nonce: now.UnixNano(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.key)
	if err != nil {
		return "", fmt.Errorf("sign handshake token: %w", err)
	}
	return signed, nil
}

// Validate checks a handshake token's signature, expiry, and type.
func (h *HandshakeIssuer) Validate(tokenString string) error {
	claims := &handshakeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return h.key, nil
	}, jwt.WithTimeFunc(h.now))
	if err != nil || !token.Valid {
		return ErrInvalidHandshake
	}
	if claims.Type != handshakeTokenType {
		return ErrInvalidHandshake
	}
	return nil
}
