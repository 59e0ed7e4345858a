// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package ratelimit provides a Redis-backed counter for go-chi/httprate so
// every server process shares the same sliding-window counts.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/config"
)

const redisOpTimeout = 500 * time.Millisecond

var _ httprate.LimitCounter = (*RedisCounter)(nil)

// RedisCounter implements httprate.LimitCounter on Redis. Each window is one
// integer key that expires after two window lengths, which is long enough
// for it to serve as the previous window of the next one.
//
// Redis errors fail open: the request is counted as zero and a warning is
// logged, so a Redis outage degrades to no limiting rather than to errors.
type RedisCounter struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger

	mu           sync.RWMutex
	windowLength time.Duration
}

// NewRedisCounter creates a counter whose keys start with prefix. Use a
// distinct prefix per limiter.
func NewRedisCounter(client *redis.Client, prefix string, logger zerolog.Logger) *RedisCounter {
	return &RedisCounter{
		client:       client,
		prefix:       prefix,
		logger:       logger.With().Str("component", "ratelimit").Str("prefix", prefix).Logger(),
		windowLength: time.Minute,
	}
}

// Config is called by httprate when the limiter is built.
func (c *RedisCounter) Config(_ int, windowLength time.Duration) {
	c.mu.Lock()
	c.windowLength = windowLength
	c.mu.Unlock()
}

// Increment adds one request to key in currentWindow.
func (c *RedisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

// IncrementBy adds amount requests to key in currentWindow.
func (c *RedisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	k := c.windowKey(key, currentWindow)
	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, k, int64(amount))
	pipe.Expire(ctx, k, 2*c.window())
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Rate limit increment failed, allowing request")
	}
	return nil
}

// Get returns the counts for key in the current and previous windows.
func (c *RedisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	vals, err := c.client.MGet(ctx, c.windowKey(key, currentWindow), c.windowKey(key, previousWindow)).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Rate limit lookup failed, allowing request")
		return 0, 0, nil
	}

	curr, err := parseCount(vals[0])
	if err != nil {
		return 0, 0, err
	}
	prev, err := parseCount(vals[1])
	if err != nil {
		return 0, 0, err
	}
	return curr, prev, nil
}

func (c *RedisCounter) window() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.windowLength
}

func (c *RedisCounter) windowKey(key string, window time.Time) string {
	return c.prefix + key + ":" + strconv.FormatInt(window.Unix(), 10)
}

func parseCount(v interface{}) (int, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse counter: %w", err)
	}
	return n, nil
}

// NewClient connects to the configured Redis and verifies it answers PING.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis address is not configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Options returns the httprate options that make a limiter share its counts
// through client. With a nil client the limiter keeps httprate's in-process
// counter.
func Options(client *redis.Client, prefix string, logger zerolog.Logger) []httprate.Option {
	if client == nil {
		return nil
	}
	return []httprate.Option{httprate.WithLimitCounter(NewRedisCounter(client, prefix, logger))}
}
