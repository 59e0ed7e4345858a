// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package audit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether events are recorded at all.
	Enabled bool

	// MinSeverity drops events below this level.
	MinSeverity Severity

	// RetentionDays is how long events are kept.
	RetentionDays int

	// CleanupInterval is how often retention is enforced while served.
	CleanupInterval time.Duration

	// BufferSize is the capacity of the async write queue.
	BufferSize int

	// WriteTimeout bounds a single store write.
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		MinSeverity:     SeverityInfo,
		RetentionDays:   90,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
		WriteTimeout:    5 * time.Second,
	}
}

// ConfigFrom converts the application's audit section.
func ConfigFrom(cfg *config.AuditConfig) *Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	if cfg.MinSeverity != "" {
		c.MinSeverity = Severity(cfg.MinSeverity)
	}
	if cfg.RetentionDays > 0 {
		c.RetentionDays = cfg.RetentionDays
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	if cfg.BufferSize > 0 {
		c.BufferSize = cfg.BufferSize
	}
	return c
}

// Logger queues audit events and writes them to a Store from a single
// background goroutine.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	stopped   atomic.Bool
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewLogger creates a logger and starts its writer.
func NewLogger(store Store, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	l := &Logger{
		config:    cfg,
		store:     store,
		eventChan: make(chan *Event, cfg.BufferSize),
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), l.config.WriteTimeout)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Failed to save audit event")
	}
}

// Log queues an event. ID and Timestamp are filled in when empty. Events
// below the minimum severity, or logged after Close, are discarded.
func (l *Logger) Log(event *Event) {
	if !l.config.Enabled || l.stopped.Load() {
		return
	}
	if !event.Severity.AtLeast(l.config.MinSeverity) {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	event.Timestamp = event.Timestamp.UTC().Truncate(time.Microsecond)

	select {
	case l.eventChan <- event:
		metrics.RecordAuditEvent(string(event.Type), string(event.Outcome), true)
	default:
		metrics.RecordAuditEvent(string(event.Type), string(event.Outcome), false)
		logging.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

// Close stops accepting events, flushes the queue and waits for the writer.
// It is safe to call more than once.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() {
		l.stopped.Store(true)
		close(l.stopChan)
	})
	l.wg.Wait()
	return nil
}

// Serve enforces retention until ctx is cancelled. It satisfies the
// supervisor's service interface.
func (l *Logger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.cleanup(ctx)
		}
	}
}

// String returns the service name.
func (l *Logger) String() string {
	return "audit-retention"
}

func (l *Logger) cleanup(ctx context.Context) {
	cutoff := l.now().AddDate(0, 0, -l.config.RetentionDays)
	count, err := l.store.Delete(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("Audit cleanup error")
		return
	}
	if count > 0 {
		logging.Info().Int64("count", count).Time("cutoff", cutoff).Msg("Cleaned up old audit events")
	}
}

// Query retrieves events matching the filter, newest first.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// LogRegistered records a new account.
func (l *Logger) LogRegistered(ctx context.Context, accountID, username string, source Source) {
	l.Log(&Event{
		Type:        EventTypeRegistered,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		ActorID:     accountID,
		ActorName:   username,
		Source:      source,
		Description: "Account registered",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogLoginSuccess records accepted credentials.
func (l *Logger) LogLoginSuccess(ctx context.Context, accountID, username string, source Source) {
	l.Log(&Event{
		Type:        EventTypeLoginSuccess,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		ActorID:     accountID,
		ActorName:   username,
		Source:      source,
		Description: "Login succeeded",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogLoginFailure records rejected credentials for the attempted email.
func (l *Logger) LogLoginFailure(ctx context.Context, email string, source Source, reason string) {
	l.Log(&Event{
		Type:        EventTypeLoginFailure,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		ActorName:   email,
		Source:      source,
		Description: "Login failed",
		Metadata:    mustJSON(map[string]string{"reason": reason}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogLogout records an ended session. accountID is empty when the token
// no longer resolved to a session.
func (l *Logger) LogLogout(ctx context.Context, accountID string, source Source) {
	l.Log(&Event{
		Type:        EventTypeLogout,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		ActorID:     accountID,
		Source:      source,
		Description: "Session ended",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// SourceFromRequest builds a Source from r. RemoteAddr is expected to have
// been rewritten by chi's RealIP middleware already.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return Source{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
