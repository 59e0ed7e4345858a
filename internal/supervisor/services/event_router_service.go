// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package services

import (
	"context"
	"errors"
	"fmt"
)

// RouterRunner is the lifecycle subset of *events.Router.
type RouterRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a router with its handlers registered.
type RouterFactory func() (RouterRunner, error)

// EventRouterService runs the interaction event consumers.
type EventRouterService struct {
	build RouterFactory
	name  string
}

// NewEventRouterService creates the wrapper.
func NewEventRouterService(build RouterFactory) *EventRouterService {
	return &EventRouterService{build: build, name: "event-router"}
}

// Serve builds a fresh router and runs it until ctx is canceled. A router
// that stops on its own is reported as a failure so suture restarts it.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.build()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	runErr := router.Run(ctx)
	closeErr := router.Close()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("event router failed: %w", runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("event router close: %w", closeErr)
	}
	return errors.New("event router stopped unexpectedly")
}

// String names the service in supervisor logs.
func (s *EventRouterService) String() string {
	return s.name
}
