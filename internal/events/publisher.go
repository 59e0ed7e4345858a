// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// NewCircuitBreaker creates a breaker that reports its state transitions to
// the log and to Prometheus.
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[interface{}] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.RecordCircuitBreakerState(name, int(to))
		},
	}
	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

// Publisher publishes interaction events through a circuit breaker.
type Publisher struct {
	publisher message.Publisher
	topic     string
	breaker   *gobreaker.CircuitBreaker[interface{}]
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub. Events go to topic.
func NewPublisher(pub message.Publisher, topic string, cb CircuitBreakerConfig, logger zerolog.Logger) *Publisher {
	logger = logger.With().Str("component", "event-publisher").Logger()
	return &Publisher{
		publisher: pub,
		topic:     topic,
		breaker:   NewCircuitBreaker(cb, logger),
		logger:    logger,
	}
}

// Publish sends event. The event ID doubles as the message UUID and the
// JetStream Nats-Msg-Id so brokers can deduplicate retried publishes.
func (p *Publisher) Publish(ctx context.Context, event *InteractionEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set("kind", string(event.Kind))
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	msg.SetContext(ctx)

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(p.topic, msg)
	})
	metrics.RecordEventPublish(string(event.Kind), err)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Kind, err)
	}
	return nil
}

// Emit publishes event and logs failures instead of returning them.
// Interaction requests use it so a bus outage never fails the mutation.
func (p *Publisher) Emit(ctx context.Context, event *InteractionEvent) {
	if err := p.Publish(ctx, event); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("event_id", event.EventID).
			Str("kind", string(event.Kind)).
			Msg("Interaction event dropped")
	}
}

// State returns the breaker state name.
func (p *Publisher) State() string {
	return p.breaker.State().String()
}

// Close stops publishing. It does not close the underlying publisher, which
// belongs to the Bus.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
