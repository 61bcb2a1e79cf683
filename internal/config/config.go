// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakPasswords contains default/example passwords that must be rejected.
var knownWeakPasswords = []string{
	"change-this-password",
	"password",
	"admin",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"LP_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"LP_SERVER_PORT" envDefault:"4242"`
	Env        string `env:"LP_ENV" envDefault:"development"`
	LogLevel   string `env:"LP_LOG_LEVEL" envDefault:"info"`

	DBPath      string `env:"LP_DB_PATH" envDefault:"./data/landingpress.db"`
	ContentPath string `env:"LP_CONTENT_PATH" envDefault:"./public/landing-content.json"`
	SecretsPath string `env:"LP_STRIPE_SECRETS_PATH" envDefault:"./data/stripe-secrets.json"`
	UploadsDir  string `env:"LP_UPLOADS_DIR" envDefault:"./public/uploads"`

	// Admin credentials for the dashboard's HTTP Basic auth. The password
	// may alternatively be an argon2id hash (recognized by prefix).
	AdminEmail    string `env:"LP_ADMIN_EMAIL,required"`
	AdminPassword string `env:"LP_ADMIN_PASSWORD,required"`

	// Checkout configuration
	ReturnURLBase  string `env:"LP_CHECKOUT_RETURN_URL_BASE"` // overrides the request origin
	DefaultPriceID string `env:"LP_STRIPE_PRICE_ID"`          // fallback price for optionless pages
	StripeVersion  string `env:"LP_STRIPE_API_VERSION"`
	AutomaticTax   bool   `env:"LP_STRIPE_AUTOMATIC_TAX" envDefault:"false"`

	// Upload limits
	UploadMaxBytes int64 `env:"LP_UPLOAD_MAX_BYTES" envDefault:"8388608"` // 8MB

	// CORS configuration
	CORSOrigins []string `env:"LP_CORS_ORIGINS" envSeparator:","`

	// Cache configuration
	RedisURL     string `env:"LP_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"LP_CACHE_PREFIX" envDefault:"lp:"`     // Redis key prefix
	CacheTTL     int    `env:"LP_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"LP_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Cleanup configuration
	StaleOrderMaxAge  int  `env:"LP_STALE_ORDER_MAX_AGE" envDefault:"24"` // Hours before open orders are pruned
	EventLogRetention int  `env:"LP_EVENT_LOG_RETENTION" envDefault:"30"` // Days of event log to keep
	DoSeed            bool `env:"LP_DO_SEED" envDefault:"false"`          // Write a starter content file when none exists
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinPasswordLength is the minimum required length for a plain admin password.
const MinPasswordLength = 12

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if !strings.Contains(cfg.AdminEmail, "@") {
		return nil, fmt.Errorf("LP_ADMIN_EMAIL must be an email address")
	}

	// Hashed passwords carry their own cost parameters; only plain
	// passwords get the length and blocklist checks.
	if !strings.HasPrefix(cfg.AdminPassword, "$argon2id$") {
		if len(cfg.AdminPassword) < MinPasswordLength {
			return nil, fmt.Errorf("LP_ADMIN_PASSWORD must be at least %d characters long, got %d; "+
				"generate one with: openssl rand -base64 18",
				MinPasswordLength, len(cfg.AdminPassword))
		}
		for _, weak := range knownWeakPasswords {
			if strings.EqualFold(cfg.AdminPassword, weak) {
				return nil, fmt.Errorf("LP_ADMIN_PASSWORD is a known default value and must not be used; " +
					"generate one with: openssl rand -base64 18")
			}
		}
	}

	return cfg, nil
}
