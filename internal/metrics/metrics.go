// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelfeed_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelfeed_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelfeed_api_active_requests",
			Help: "Requests currently being served",
		},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_rate_limit_rejections_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	// Feeds
	FeedBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelfeed_feed_build_duration_seconds",
			Help:    "Time to assemble one feed page",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"feed"},
	)

	FeedPostsServed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelfeed_feed_posts_served",
			Help:    "Number of posts in a served feed page",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		},
		[]string{"feed"},
	)

	FeedCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelfeed_for_you_candidates",
			Help:    "Candidate posts scored per for-you request",
			Buckets: prometheus.ExponentialBuckets(10, 4, 7),
		},
	)

	FeedFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_feed_failures_total",
			Help: "Feed requests answered with an empty page after a store failure",
		},
		[]string{"feed"},
	)

	// Interaction events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_events_published_total",
			Help: "Interaction events published to the bus",
		},
		[]string{"kind"},
	)

	EventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelfeed_event_publish_errors_total",
			Help: "Interaction events that could not be published",
		},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_events_consumed_total",
			Help: "Interaction events handled by consumers",
		},
		[]string{"kind", "outcome"}, // outcome: applied, duplicate, ignored, malformed, failed
	)

	// Audit trail
	AuditEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_audit_events_total",
			Help: "Audit events accepted for writing",
		},
		[]string{"type", "outcome"},
	)

	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelfeed_audit_events_dropped_total",
			Help: "Audit events dropped because the write buffer was full",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelfeed_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordDBQuery records one database operation.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records one HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordFeedBuild records one assembled feed page.
func RecordFeedBuild(feed string, duration time.Duration, posts int) {
	FeedBuildDuration.WithLabelValues(feed).Observe(duration.Seconds())
	FeedPostsServed.WithLabelValues(feed).Observe(float64(posts))
}

// RecordFeedFailure records a feed served empty because the store failed.
func RecordFeedFailure(feed string) {
	FeedFailures.WithLabelValues(feed).Inc()
}

// RecordRateLimited records a rejected request.
func RecordRateLimited(limiter string) {
	RateLimitRejections.WithLabelValues(limiter).Inc()
}

// RecordEventPublish records a publish attempt.
func RecordEventPublish(kind string, err error) {
	if err != nil {
		EventPublishErrors.Inc()
		return
	}
	EventsPublished.WithLabelValues(kind).Inc()
}

// RecordEventConsumed records a handled event.
func RecordEventConsumed(kind, outcome string) {
	EventsConsumed.WithLabelValues(kind, outcome).Inc()
}

// RecordAuditEvent records an audit event queued for writing, or dropped
// when queued is false.
func RecordAuditEvent(eventType, outcome string, queued bool) {
	if !queued {
		AuditEventsDropped.Inc()
		return
	}
	AuditEventsRecorded.WithLabelValues(eventType, outcome).Inc()
}

// RecordCircuitBreakerState records a breaker transition. state follows
// gobreaker's numbering.
func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
