// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Command server runs the Crumbcoat backend: the admin authentication
// endpoints, portfolio and page content storage, image uploads, and the
// static frontend bundle.
//
// Configuration is read from defaults, an optional YAML file, and
// environment variables; see the config package for the variable names.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/crumbcoat/crumbcoat/internal/api"
	"github.com/crumbcoat/crumbcoat/internal/auth"
	"github.com/crumbcoat/crumbcoat/internal/config"
	"github.com/crumbcoat/crumbcoat/internal/content"
	"github.com/crumbcoat/crumbcoat/internal/logging"
)

// attemptCleanupInterval is how often stale login-attempt records are
// evicted.
const attemptCleanupInterval = 5 * time.Minute

// shutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Cannot load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Cannot initialize content store")
	}
	defer store.Close()

	authSvc, err := auth.NewService(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Cannot initialize auth service")
	}
	authSvc.StartCleanup(ctx, attemptCleanupInterval)

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      api.NewRouter(authSvc, store, cfg),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", server.Addr).
			Str("environment", cfg.Server.Environment).
			Str("storage", cfg.Storage.Backend).
			Bool("cookie_auth", cfg.Security.CookieAuth).
			Msg("Server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}

	logging.Info().Msg("Server stopped")
}

// newStore builds the configured content store backend.
func newStore(ctx context.Context, cfg *config.Config) (content.Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return content.NewPostgresStore(ctx, cfg.Storage.DatabaseURL)
	default:
		return content.NewFileStore(cfg.Storage.DataDir)
	}
}
