// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/crumbcoat/config.yaml",
	"/etc/crumbcoat/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults are
// layered first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3001,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
			CORSOrigin:  "http://localhost:5173",
			StaticDir:   "",
		},
		Security: SecurityConfig{
			AdminUsername:    "admin",
			SessionTTL:       time.Hour,
			HandshakeTTL:     30 * time.Second,
			SessionMaxAge:    0,
			CookieAuth:       false,
			CookieSecure:     true,
			CookieSameSite:   "strict",
			MaxLoginAttempts: 5,
			AttemptWindow:    15 * time.Minute,
		},
		Storage: StorageConfig{
			Backend: "file",
			DataDir: "./data",
		},
		Uploads: UploadConfig{
			Dir:      "./uploads",
			MaxBytes: 10 << 20, // 10MB, matches the upload form limit
		},
		WhatsApp: WhatsAppConfig{
			Number: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Env var names map to koanf paths via envValueTransformFunc:
	// ADMIN_PASSWORD -> security.admin_password, PORT -> server.port.
	if err := k.Load(env.ProviderWithValue("", ".", envValueTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, honoring CONFIG_PATH first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// millisecondEnvVars are the duration variables the Node-era deployments
// set as bare millisecond integers (SESSION_TIMEOUT=3600000).
var millisecondEnvVars = map[string]bool{
	"session_ttl":          true,
	"handshake_ttl":        true,
	"session_timeout":      true,
	"login_attempt_window": true,
	"http_timeout":         true,
}

// envValueTransformFunc maps an environment variable to its koanf path
// and value. Bare numeric values for the legacy duration variables are
// interpreted as milliseconds; Go duration strings ("30m") pass through
// unchanged.
func envValueTransformFunc(key, value string) (string, interface{}) {
	mapped := envTransformFunc(key)
	if mapped == "" {
		return "", nil
	}
	if millisecondEnvVars[strings.ToLower(key)] && isBareNumber(value) {
		return mapped, value + "ms"
	}
	return mapped, value
}

// isBareNumber reports whether s is a non-empty string of digits.
func isBareNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// envTransformFunc maps environment variable names to koanf config paths.
// The names are the ones the site's deployments already use; NODE_ENV is
// kept as an alias of ENVIRONMENT from the earlier Node-based hosting.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"port":         "server.port",
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",
		"node_env":     "server.environment",
		"cors_origin":  "server.cors_origin",
		"static_dir":   "server.static_dir",
		"trust_proxy":  "server.trust_proxy",

		// Security
		"admin_username":       "security.admin_username",
		"admin_password":       "security.admin_password",
		"jwt_secret":           "security.jwt_secret",
		"internal_api_key":     "security.internal_api_key",
		"session_ttl":          "security.session_ttl",
		"handshake_ttl":        "security.handshake_ttl",
		"session_timeout":      "security.session_max_age",
		"cookie_auth":          "security.cookie_auth",
		"cookie_secure":        "security.cookie_secure",
		"cookie_samesite":      "security.cookie_samesite",
		"cookie_domain":        "security.cookie_domain",
		"max_login_attempts":   "security.max_login_attempts",
		"login_attempt_window": "security.attempt_window",
		"disable_rate_limit":   "security.rate_limit_disabled",

		// Storage
		"storage_backend": "storage.backend",
		"data_dir":        "storage.data_dir",
		"database_url":    "storage.database_url",

		// Uploads
		"upload_dir":       "uploads.dir",
		"upload_max_bytes": "uploads.max_bytes",

		// WhatsApp
		"whatsapp_number": "whatsapp.number",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables cannot
	// pollute the config.
	return ""
}
