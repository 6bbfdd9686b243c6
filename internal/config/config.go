// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinJWTSecretLength is the minimum required length for the token signing
// secret. HS256 needs at least 32 bytes of key material to be worth having.
const MinJWTSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"GALLERIA_DB_PATH" envDefault:"./data/galleria.db"`
	JWTSecret  string `env:"GALLERIA_JWT_SECRET,required"`
	ServerHost string `env:"GALLERIA_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"GALLERIA_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"GALLERIA_ENV" envDefault:"development"`
	LogLevel   string `env:"GALLERIA_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"GALLERIA_UPLOADS_DIR" envDefault:"./uploads"`

	// TokenTTL applies to every login path. The default is 24h.
	TokenTTL time.Duration `env:"GALLERIA_TOKEN_TTL" envDefault:"24h"`

	// Login rate limiting (per client IP).
	LoginRateLimit float64 `env:"GALLERIA_LOGIN_RATE_LIMIT" envDefault:"1"`
	LoginBurst     int     `env:"GALLERIA_LOGIN_BURST" envDefault:"5"`

	// Seeding configuration. The admin user is created at startup only when
	// SeedAdminPassword is set and no admin exists yet.
	SeedAdminEmail    string `env:"GALLERIA_SEED_ADMIN_EMAIL" envDefault:"admin@example.com"`
	SeedAdminPassword string `env:"GALLERIA_SEED_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("GALLERIA_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("GALLERIA_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("GALLERIA_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("GALLERIA_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
