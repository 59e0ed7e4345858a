// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

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

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelfeed/config.yaml",
	"/etc/reelfeed/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        5000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/reelfeed.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     50,
		},
		Feed: FeedConfig{
			ForYouSize:     20,
			MaxCandidates:  0,
			FollowingBoost: 20,
			LikeWeight:     3,
			CommentWeight:  4,
			ViewWeight:     1,
			RequestTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:        "",
			SessionTTL:       7 * 24 * time.Hour,
			SessionPath:      "/data/sessions",
			CookieSecure:     false,
			CORSOrigins:      []string{"*"},
			RateLimitReqs:    100,
			RateLimitWindow:  time.Minute,
			LoginLimitReqs:   5,
			LoginLimitWindow: 15 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:      "",
			DB:        0,
			KeyPrefix: "reelfeed:ratelimit:",
		},
		Events: EventsConfig{
			Enabled:      true,
			NATSEnabled:  false,
			NATSEmbedded: true,
			NATSURL:      "nats://127.0.0.1:4222",
			NATSPort:     4222,
			StoreDir:     "/data/nats/jetstream",
			Topic:        "reelfeed_interactions",
			RetryCount:   3,
			CloseTimeout: 30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:         true,
			MinSeverity:     "info",
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
			BufferSize:      1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, JWT_SECRET -> security.jwt_secret
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
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

// findConfigFile returns the first config file found, or empty string.
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

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"port":         "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// API paging
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	// Feed ranking
	"feed_for_you_size":    "feed.for_you_size",
	"feed_max_candidates":  "feed.max_candidates",
	"feed_following_boost": "feed.following_boost",
	"feed_like_weight":     "feed.like_weight",
	"feed_comment_weight":  "feed.comment_weight",
	"feed_view_weight":     "feed.view_weight",
	"feed_request_timeout": "feed.request_timeout",

	// Security
	"jwt_secret":           "security.jwt_secret",
	"session_ttl":          "security.session_ttl",
	"session_path":         "security.session_path",
	"cookie_secure":        "security.cookie_secure",
	"cors_origins":         "security.cors_origins",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"login_limit_requests": "security.login_limit_reqs",
	"login_limit_window":   "security.login_limit_window",

	// Redis
	"redis_addr":       "redis.addr",
	"redis_password":   "redis.password",
	"redis_db":         "redis.db",
	"redis_key_prefix": "redis.key_prefix",

	// Events
	"events_enabled":       "events.enabled",
	"nats_enabled":         "events.nats_enabled",
	"nats_embedded":        "events.nats_embedded",
	"nats_url":             "events.nats_url",
	"nats_port":            "events.nats_port",
	"nats_store_dir":       "events.store_dir",
	"events_topic":         "events.topic",
	"events_retry_count":   "events.retry_count",
	"events_close_timeout": "events.close_timeout",

	// Audit
	"audit_enabled":          "audit.enabled",
	"audit_min_severity":     "audit.min_severity",
	"audit_retention_days":   "audit.retention_days",
	"audit_cleanup_interval": "audit.cleanup_interval",
	"audit_buffer_size":      "audit.buffer_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables are skipped so unrelated environment does not leak into config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
