// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package models defines the wire types shared between the API handlers,
// the content store, and the auth client. JSON field names are camelCase
// to stay compatible with the deployed frontend.
package models

import "github.com/goccy/go-json"

// PortfolioItem is a single cake in the portfolio gallery.
type PortfolioItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required,max=200"`
	Category    string   `json:"category" validate:"required,max=100"`
	PriceRange  string   `json:"priceRange" validate:"max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Images      []string `json:"images"`
	Views       int      `json:"views"`

	// CreatedAt is unix milliseconds, matching the timestamps already
	// stored in live portfolio data.
	CreatedAt int64 `json:"createdAt"`
}

// PortfolioPatch is a partial update for a portfolio item. Nil fields are
// left unchanged.
type PortfolioPatch struct {
	Name        *string   `json:"name"`
	Category    *string   `json:"category"`
	PriceRange  *string   `json:"priceRange"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
	Views       *int      `json:"views"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username  string `json:"username" validate:"required,max=128"`
	Password  string `json:"password" validate:"required,max=1024"`
	Handshake string `json:"handshake"`
}

// VerifyRequest is the body of POST /api/auth/verify. The token may also
// arrive via the auth cookie or an Authorization bearer header.
type VerifyRequest struct {
	Token string `json:"token"`
}

// HandshakeResponse is the body of GET /api/auth/handshake.
type HandshakeResponse struct {
	Success   bool   `json:"success"`
	Handshake string `json:"handshake"`

	// ExpiresIn is milliseconds until the handshake expires.
	ExpiresIn int64 `json:"expiresIn"`
}

// LoginResponse is the success body of POST /api/auth/login. Token is
// omitted in cookie mode.
type LoginResponse struct {
	Success    bool   `json:"success"`
	Token      string `json:"token,omitempty"`
	ExpiresIn  int64  `json:"expiresIn"`
	CookieAuth bool   `json:"cookieAuth"`
	Message    string `json:"message,omitempty"`
}

// VerifyResponse is the success body of POST /api/auth/verify.
type VerifyResponse struct {
	Success bool   `json:"success"`
	User    string `json:"user"`
	Role    string `json:"role"`
	Message string `json:"message,omitempty"`
}

// SimpleResponse covers bodies that carry only a success flag and an
// optional message (logout, errors).
type SimpleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ContentWriteResponse is the body of POST /api/content/{type}. Data
// echoes the stored document so the frontend can replace its state
// without a follow-up read.
type ContentWriteResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// UploadResponse is the body of POST /api/upload.
type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// OrderLinkResponse is the body of GET /api/portfolio/{id}/whatsapp.
type OrderLinkResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
