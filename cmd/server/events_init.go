// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/events"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/supervisor/services"
)

// eventComponents is everything the interaction event pipeline owns.
type eventComponents struct {
	cfg       *config.EventsConfig
	bus       *events.Bus
	publisher *events.Publisher
	projector *events.AccountLikesProjector
	wmLogger  watermill.LoggerAdapter
}

func initEvents(cfg *config.EventsConfig, store events.LikeCounterStore, slogLogger *slog.Logger) (*eventComponents, error) {
	wmLogger := watermill.NewSlogLogger(slogLogger)
	logger := logging.WithComponent("events")

	bus, err := events.NewBus(cfg, wmLogger, logger)
	if err != nil {
		return nil, fmt.Errorf("open event bus: %w", err)
	}

	return &eventComponents{
		cfg:       cfg,
		bus:       bus,
		publisher: events.NewPublisher(bus.Publisher, cfg.Topic, events.DefaultCircuitBreakerConfig("event-publisher"), logger),
		projector: events.NewAccountLikesProjector(store, logger),
		wmLogger:  wmLogger,
	}, nil
}

// newRouter builds a consumer router. The supervisor calls it on every
// (re)start since a watermill router runs only once.
func (c *eventComponents) newRouter() (services.RouterRunner, error) {
	rc := events.DefaultRouterConfig()
	rc.RetryMaxRetries = c.cfg.RetryCount
	if c.cfg.CloseTimeout > 0 {
		rc.CloseTimeout = c.cfg.CloseTimeout
	}

	router, err := events.NewRouter(rc, c.wmLogger)
	if err != nil {
		return nil, err
	}
	c.projector.Register(router, c.cfg.Topic, c.bus.Subscriber)
	return router, nil
}

// Close stops publishing, then closes the transport.
func (c *eventComponents) Close() error {
	return errors.Join(c.publisher.Close(), c.bus.Close())
}
