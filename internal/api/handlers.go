// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package api wires the HTTP surface: the chi router, middleware, and all
// request handlers. Handlers translate between the wire contract the
// frontend already speaks and the auth and content packages.
package api

import (
	"net"
	"net/http"
	"time"

	"github.com/crumbcoat/crumbcoat/internal/auth"
	"github.com/crumbcoat/crumbcoat/internal/config"
	"github.com/crumbcoat/crumbcoat/internal/content"
	"github.com/crumbcoat/crumbcoat/internal/models"
)

// Handler holds the dependencies shared by all request handlers.
type Handler struct {
	auth  *auth.Service
	store content.Store
	cfg   *config.Config
}

// NewHandler creates a Handler with its dependencies.
func NewHandler(authSvc *auth.Service, store content.Store, cfg *config.Config) *Handler {
	return &Handler{
		auth:  authSvc,
		store: store,
		cfg:   cfg,
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// clientIP returns the request's client IP from RemoteAddr. When the
// server trusts an upstream proxy, the RealIP middleware has already
// folded the forwarding headers into RemoteAddr; otherwise this is the
// connection address and forwarding headers are ignored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
