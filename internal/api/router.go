// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crumbcoat/crumbcoat/internal/auth"
	"github.com/crumbcoat/crumbcoat/internal/config"
	"github.com/crumbcoat/crumbcoat/internal/content"
)

// NewRouter assembles the full HTTP surface: middleware stack, auth and
// content routes, uploads, static assets, and operational endpoints.
func NewRouter(authSvc *auth.Service, store content.Store, cfg *config.Config) *chi.Mux {
	h := NewHandler(authSvc, store, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP rewrites RemoteAddr from forwarding headers. Only safe behind
	// a proxy that strips client-supplied values; otherwise the login
	// throttle would key on whatever the client claims.
	if cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(NewCORS(cfg.Server.CORSOrigin))
	r.Use(SecurityHeaders)
	r.Use(PrometheusMetrics)
	if !cfg.Security.RateLimitDisabled {
		r.Use(RateLimit(RateLimitGlobal))
	}

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.Security.RateLimitDisabled {
				r.Get("/handshake", h.Handshake)
			} else {
				r.With(RateLimit(RateLimitHandshake)).Get("/handshake", h.Handshake)
			}
			r.Post("/login", h.Login)
			r.Post("/verify", h.VerifySession)
			r.Post("/logout", h.Logout)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", h.GetPortfolio)
			r.Get("/{id}/whatsapp", h.GetOrderLink)
			r.With(authSvc.RequireAdmin).Post("/", h.CreatePortfolioItem)
			r.With(authSvc.RequireAdmin).Put("/{id}", h.UpdatePortfolioItem)
			r.With(authSvc.RequireAdmin).Delete("/{id}", h.DeletePortfolioItem)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/{type}", h.GetContent)
			r.With(authSvc.RequireAdmin).Post("/{type}", h.SetContent)
		})

		r.With(authSvc.RequireAdmin).Post("/upload", h.Upload)
	})

	// Uploaded images are served directly from disk.
	uploadsFS := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir)))
	r.Get("/uploads/*", uploadsFS.ServeHTTP)

	r.NotFound(notFoundHandler(cfg.Server.StaticDir))

	return r
}

// notFoundHandler serves the SPA bundle for non-API paths when a static
// dir is configured: real files are served as-is, everything else falls
// back to index.html so client-side routing works on refresh.
func notFoundHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if staticDir == "" || strings.HasPrefix(r.URL.Path, "/api") {
			respondError(w, http.StatusNotFound, "Endpoint not found")
			return
		}

		requested := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			http.ServeFile(w, r, requested)
			return
		}
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	}
}
