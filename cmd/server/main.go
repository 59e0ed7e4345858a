// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/reelfeed/internal/api"
	"github.com/tomtom215/reelfeed/internal/audit"
	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/ratelimit"
	"github.com/tomtom215/reelfeed/internal/supervisor"
	"github.com/tomtom215/reelfeed/internal/supervisor/services"
)

const httpShutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("events", cfg.Events.Enabled).
		Bool("redis", cfg.Redis.Enabled()).
		Msg("Starting reelfeed")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Server stopped")
}

//nolint:gocyclo // sequential startup steps
func run(cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	engine, err := feed.NewEngine(db, cfg.FeedEngineConfig(), logging.WithComponent("feed"))
	if err != nil {
		return fmt.Errorf("initialize feed engine: %w", err)
	}

	sessionDB, err := auth.OpenBadger(cfg.Security.SessionPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := sessionDB.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	if cfg.Security.SessionPath == "" && cfg.Server.IsProduction() {
		logging.Warn().Msg("Sessions are kept in memory and will be lost on restart (SESSION_PATH is empty)")
	}

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize token manager: %w", err)
	}
	sessions := auth.NewService(
		auth.NewBadgerSessionStore(sessionDB),
		tokens,
		cfg.Security.SessionTTL,
		logging.WithComponent("auth"),
	)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = ratelimit.NewClient(pingCtx, &cfg.Redis)
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing redis client")
			}
		}()
		logging.Info().Str("addr", cfg.Redis.Addr).Msg("Rate limit counters shared through redis")
	}

	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
			break
		}
	}

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	var emitter api.EventEmitter
	if cfg.Events.Enabled {
		ev, err := initEvents(&cfg.Events, db, slogLogger)
		if err != nil {
			return fmt.Errorf("initialize events: %w", err)
		}
		defer func() {
			if err := ev.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		emitter = ev.publisher
		tree.AddMessagingService(services.NewEventRouterService(ev.newRouter))
		logging.Info().Str("transport", ev.bus.Transport).Str("topic", cfg.Events.Topic).Msg("Interaction events enabled")
	}

	handler := api.NewHandler(db, engine, sessions, emitter, cfg)
	if cfg.Audit.Enabled {
		auditLog, err := initAudit(db, &cfg.Audit)
		if err != nil {
			return fmt.Errorf("initialize audit log: %w", err)
		}
		defer func() {
			if err := auditLog.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit log")
			}
		}()
		handler.SetAuditor(auditLog)
		tree.AddAPIService(auditLog)
		logging.Info().Int("retention_days", cfg.Audit.RetentionDays).Msg("Security audit trail enabled")
	}

	chiMw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromConfig(cfg, redisClient), logging.WithComponent("http"))
	router := api.NewRouter(handler, auth.NewMiddleware(sessions), chiMw)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, httpShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	return nil
}

// initAudit creates the audit table in the main database and starts the
// async writer.
func initAudit(db *database.DB, cfg *config.AuditConfig) (*audit.Logger, error) {
	store := audit.NewDuckDBStore(db.Conn())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.CreateTable(ctx); err != nil {
		return nil, err
	}
	return audit.NewLogger(store, audit.ConfigFrom(cfg)), nil
}
