// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/ratelimit"
)

// Limiter names, used as metric labels and redis key segments.
const (
	limiterGlobal = "global"
	limiterLogin  = "login"
)

// ChiMiddlewareConfig holds configuration for the chi middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests  int
	RateLimitWindow    time.Duration
	LoginLimitRequests int
	LoginLimitWindow   time.Duration

	// RedisClient shares limiter counters across replicas. Nil keeps them
	// in process.
	RedisClient    *redis.Client
	RedisKeyPrefix string
}

// DefaultChiMiddlewareConfig returns the production defaults: 100 requests a
// minute per IP and 5 login attempts per 15 minutes.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{},
		CORSAllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSAllowCredentials: true,
		CORSMaxAge:           86400,

		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
		LoginLimitRequests: 5,
		LoginLimitWindow:   15 * time.Minute,
		RedisKeyPrefix:     "reelfeed:ratelimit:",
	}
}

// ChiMiddlewareConfigFromConfig builds the middleware configuration from the
// service configuration.
func ChiMiddlewareConfigFromConfig(cfg *config.Config, client *redis.Client) *ChiMiddlewareConfig {
	mc := DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mc.RateLimitRequests = cfg.Security.RateLimitReqs
	mc.RateLimitWindow = cfg.Security.RateLimitWindow
	mc.LoginLimitRequests = cfg.Security.LoginLimitReqs
	mc.LoginLimitWindow = cfg.Security.LoginLimitWindow
	mc.RedisClient = client
	if cfg.Redis.KeyPrefix != "" {
		mc.RedisKeyPrefix = cfg.Redis.KeyPrefix
	}
	return mc
}

// ChiMiddleware provides chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
	logger zerolog.Logger
}

// NewChiMiddleware creates the factories. A nil config uses the defaults.
func NewChiMiddleware(cfg *ChiMiddlewareConfig, logger zerolog.Logger) *ChiMiddleware {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}

	// A wildcard origin cannot be combined with credentials.
	allowCredentials := cfg.CORSAllowCredentials
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			allowCredentials = false
		}
	}

	return &ChiMiddleware{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   cfg.CORSAllowedMethods,
			AllowedHeaders:   cfg.CORSAllowedHeaders,
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: allowCredentials,
			MaxAge:           cfg.CORSMaxAge,
		}),
		logger: logger,
	}
}

// CORS returns the go-chi/cors middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit limits every API request per client IP.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(limiterGlobal, m.config.RateLimitRequests, m.config.RateLimitWindow)
}

// RateLimitLogin is the stricter limiter for credential checks.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.limit(limiterLogin, m.config.LoginLimitRequests, m.config.LoginLimitWindow)
}

func (m *ChiMiddleware) limit(name string, requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	opts := []httprate.Option{
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitedHandler(name)),
	}
	opts = append(opts, ratelimit.Options(m.config.RedisClient, m.config.RedisKeyPrefix+name+":", m.logger)...)

	return httprate.Limit(requests, window, opts...)
}

func rateLimitedHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordRateLimited(name)
		logging.Ctx(r.Context()).Info().
			Str("limiter", name).
			Str("ip", clientIP(r)).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("Rate limit exceeded")
		respondError(w, r, http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests, try again later", nil)
	}
}

// APISecurityHeaders adds the security headers every API response carries.
// HSTS is only sent over TLS or behind a TLS-terminating proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging logs each request once it completes.
func RequestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := logging.Ctx(r.Context()).Debug()
			if status >= http.StatusInternalServerError {
				event = logging.Ctx(r.Context()).Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", sanitizeLogValue(r.URL.Path)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("Request completed")
		})
	}
}

// chiMiddleware adapts a HandlerFunc middleware to chi's signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}
