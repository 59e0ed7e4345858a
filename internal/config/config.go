// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package config loads service configuration from defaults, an optional YAML
// file and environment variables.
package config

import (
	"time"

	"github.com/tomtom215/reelfeed/internal/feed"
)

// Config holds all service configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Feed     FeedConfig     `koanf:"feed"`
	Security SecurityConfig `koanf:"security"`
	Redis    RedisConfig    `koanf:"redis"`
	Events   EventsConfig   `koanf:"events"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// IsProduction reports whether production checks apply.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // DuckDB default true
	SkipIndexes            bool   `koanf:"skip_indexes"`             // for fast test setup
}

// APIConfig holds following-feed paging settings
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// FeedConfig holds for-you ranking settings
type FeedConfig struct {
	ForYouSize     int           `koanf:"for_you_size"`
	MaxCandidates  int           `koanf:"max_candidates"` // 0 = score every post
	FollowingBoost float64       `koanf:"following_boost"`
	LikeWeight     float64       `koanf:"like_weight"`
	CommentWeight  float64       `koanf:"comment_weight"`
	ViewWeight     float64       `koanf:"view_weight"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// SecurityConfig holds authentication, session and rate limit settings
type SecurityConfig struct {
	JWTSecret        string        `koanf:"jwt_secret"`
	SessionTTL       time.Duration `koanf:"session_ttl"`
	SessionPath      string        `koanf:"session_path"` // empty = in-memory badger
	CookieSecure     bool          `koanf:"cookie_secure"`
	CORSOrigins      []string      `koanf:"cors_origins"`
	RateLimitReqs    int           `koanf:"rate_limit_reqs"`
	RateLimitWindow  time.Duration `koanf:"rate_limit_window"`
	LoginLimitReqs   int           `koanf:"login_limit_reqs"`
	LoginLimitWindow time.Duration `koanf:"login_limit_window"`
}

// RedisConfig holds the shared rate limit counter settings. An empty Addr
// keeps counters in process.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// Enabled reports whether a redis server is configured.
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// EventsConfig holds interaction event bus settings
type EventsConfig struct {
	Enabled      bool          `koanf:"enabled"`
	NATSEnabled  bool          `koanf:"nats_enabled"`
	NATSEmbedded bool          `koanf:"nats_embedded"`
	NATSURL      string        `koanf:"nats_url"`
	NATSPort     int           `koanf:"nats_port"`
	StoreDir     string        `koanf:"store_dir"`
	Topic        string        `koanf:"topic"`
	RetryCount   int           `koanf:"retry_count"`
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// AuditConfig holds the account security audit trail settings
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	MinSeverity     string        `koanf:"min_severity"` // info, warning, error, critical
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	BufferSize      int           `koanf:"buffer_size"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// FeedEngineConfig converts the api and feed sections into the engine's
// configuration.
func (c *Config) FeedEngineConfig() *feed.Config {
	return &feed.Config{
		Weights: feed.Weights{
			Like:           c.Feed.LikeWeight,
			Comment:        c.Feed.CommentWeight,
			View:           c.Feed.ViewWeight,
			FollowingBoost: c.Feed.FollowingBoost,
		},
		ForYouSize:      c.Feed.ForYouSize,
		MaxCandidates:   c.Feed.MaxCandidates,
		DefaultPageSize: c.API.DefaultPageSize,
		MaxPageSize:     c.API.MaxPageSize,
	}
}

// Load reads configuration using the layered koanf loader.
//
// Precedence, lowest first:
//  1. Built-in defaults
//  2. Config file (CONFIG_PATH or config.yaml)
//  3. Environment variables
func Load() (*Config, error) {
	return LoadWithKoanf()
}
