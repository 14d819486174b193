// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package config loads and validates Crumbcoat configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority). The environment variable names match the
// deployment variables the site has always used (ADMIN_PASSWORD, JWT_SECRET,
// INTERNAL_API_KEY, COOKIE_AUTH and friends).
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crumbcoat/crumbcoat/internal/logging"
)

// Config is the root configuration for the Crumbcoat server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Storage  StorageConfig  `koanf:"storage"`
	Uploads  UploadConfig   `koanf:"uploads"`
	WhatsApp WhatsAppConfig `koanf:"whatsapp"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`

	// CORSOrigin is the single allowed browser origin. Credentialed CORS
	// cannot use a wildcard, so this is an exact origin.
	CORSOrigin string `koanf:"cors_origin"`

	// TrustProxy honors X-Forwarded-For and X-Real-IP from an upstream
	// proxy. Off by default: with no trusted proxy in front, a direct
	// client could spoof those headers and rotate past the login
	// throttle.
	TrustProxy bool `koanf:"trust_proxy"`

	// StaticDir is the built frontend bundle served for non-API routes.
	// Empty disables static serving.
	StaticDir string `koanf:"static_dir"`
}

// SecurityConfig holds authentication settings.
type SecurityConfig struct {
	AdminUsername  string `koanf:"admin_username"`
	AdminPassword  string `koanf:"admin_password"`
	JWTSecret      string `koanf:"jwt_secret"`
	InternalAPIKey string `koanf:"internal_api_key"`

	// SessionTTL is the lifetime of an issued session token.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// HandshakeTTL is the validity window of a handshake token.
	HandshakeTTL time.Duration `koanf:"handshake_ttl"`

	// SessionMaxAge optionally caps session age below SessionTTL.
	// Zero disables the check.
	SessionMaxAge time.Duration `koanf:"session_max_age"`

	// Cookie-based token delivery. When CookieAuth is false the login
	// response carries the token in the body instead.
	CookieAuth     bool   `koanf:"cookie_auth"`
	CookieSecure   bool   `koanf:"cookie_secure"`
	CookieSameSite string `koanf:"cookie_samesite"`
	CookieDomain   string `koanf:"cookie_domain"`

	// Login throttling.
	MaxLoginAttempts int           `koanf:"max_login_attempts"`
	AttemptWindow    time.Duration `koanf:"attempt_window"`

	// RateLimitDisabled turns off the per-IP HTTP rate limiters.
	// Intended for tests only.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// StorageConfig selects and configures the content store backend.
type StorageConfig struct {
	// Backend is "file" or "postgres".
	Backend string `koanf:"backend"`

	// DataDir holds the JSON documents for the file backend.
	DataDir string `koanf:"data_dir"`

	// DatabaseURL is the connection string for the postgres backend.
	DatabaseURL string `koanf:"database_url"`
}

// UploadConfig holds image upload settings.
type UploadConfig struct {
	Dir      string `koanf:"dir"`
	MaxBytes int64  `koanf:"max_bytes"`
}

// WhatsAppConfig holds order-link settings.
type WhatsAppConfig struct {
	// Number is the business phone number order inquiries are sent to.
	Number string `koanf:"number"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SameSite maps the configured SameSite name to its http constant.
// Unknown values fall back to Strict.
func (c *SecurityConfig) SameSite() http.SameSite {
	switch strings.ToLower(c.CookieSameSite) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// Validate checks the configuration for consistency and, in production,
// for hard security requirements. Outside production it fills development
// fallbacks for missing secrets so the server can run locally.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	switch c.Storage.Backend {
	case "file":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for the file backend")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (expected file or postgres)", c.Storage.Backend)
	}

	if c.Security.MaxLoginAttempts < 1 {
		return fmt.Errorf("security.max_login_attempts must be at least 1")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.session_ttl must be positive")
	}
	if c.Security.HandshakeTTL <= 0 {
		return fmt.Errorf("security.handshake_ttl must be positive")
	}

	if c.IsProduction() {
		return c.validateProductionSecrets()
	}
	c.applyDevelopmentFallbacks()
	return nil
}

// validateProductionSecrets enforces that production never starts with
// missing or fallback credentials.
func (c *Config) validateProductionSecrets() error {
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set in production")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Security.InternalAPIKey == "" {
		return fmt.Errorf("INTERNAL_API_KEY must be set in production")
	}
	return nil
}

// applyDevelopmentFallbacks fills missing secrets with local-only values.
// Each fallback logs a warning.
func (c *Config) applyDevelopmentFallbacks() {
	if c.Security.AdminPassword == "" {
		c.Security.AdminPassword = "admin"
		logging.Warn().Msg("ADMIN_PASSWORD not set, using development fallback password")
	}
	if c.Security.JWTSecret == "" {
		c.Security.JWTSecret = "crumbcoat-dev-secret-change-me"
		logging.Warn().Msg("JWT_SECRET not set, using development fallback secret")
	}
	if c.Security.InternalAPIKey == "" {
		c.Security.InternalAPIKey = randomHexKey()
		logging.Warn().Msg("INTERNAL_API_KEY not set, generated an ephemeral key for this process")
	}
}

// randomHexKey returns a random 32-byte key as hex. Used only for the
// development handshake-key fallback; the key does not survive restarts.
func randomHexKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("cannot generate ephemeral key: %v", err))
	}
	return hex.EncodeToString(buf)
}
