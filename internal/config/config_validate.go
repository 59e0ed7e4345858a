// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// minJWTSecretLength is the shortest HS256 secret accepted in production.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateFeed(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateAudit(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production", "test":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Server.Environment)
	}
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

// validateFeed delegates ranking rules to the engine's own validation so the
// two cannot drift.
func (c *Config) validateFeed() error {
	if c.Feed.RequestTimeout <= 0 {
		return fmt.Errorf("FEED_REQUEST_TIMEOUT must be positive, got %v", c.Feed.RequestTimeout)
	}
	if err := c.FeedEngineConfig().Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1m, got %v", c.Security.SessionTTL)
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Server.IsProduction() && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minJWTSecretLength)
	}
	return nil
}

// validateCORS rejects a wildcard origin in production because the session
// cookie is sent with credentials.
func (c *Config) validateCORS() error {
	if !c.Server.IsProduction() {
		return nil
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must list explicit origins in production")
		}
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %v", c.Security.RateLimitWindow)
	}
	if c.Security.LoginLimitReqs < 1 {
		return fmt.Errorf("LOGIN_LIMIT_REQUESTS must be positive, got %d", c.Security.LoginLimitReqs)
	}
	if c.Security.LoginLimitWindow < time.Second {
		return fmt.Errorf("LOGIN_LIMIT_WINDOW must be at least 1s, got %v", c.Security.LoginLimitWindow)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when events are enabled")
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must be non-negative, got %d", c.Events.RetryCount)
	}
	if !c.Events.NATSEnabled {
		return nil
	}
	if err := validateNATSURL(c.Events.NATSURL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.Events.NATSEmbedded && c.Events.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	switch c.Audit.MinSeverity {
	case "info", "warning", "error", "critical":
	default:
		return fmt.Errorf("AUDIT_MIN_SEVERITY must be info, warning, error or critical, got %q", c.Audit.MinSeverity)
	}
	if c.Audit.RetentionDays < 1 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be positive, got %d", c.Audit.RetentionDays)
	}
	if c.Audit.CleanupInterval < time.Minute {
		return fmt.Errorf("AUDIT_CLEANUP_INTERVAL must be at least 1m, got %v", c.Audit.CleanupInterval)
	}
	if c.Audit.BufferSize < 1 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive, got %d", c.Audit.BufferSize)
	}
	return nil
}

func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
