// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/logging"
)

func TestLoggerWritesOnClose(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(0)
	l := NewLogger(store, nil)

	ctx := logging.ContextWithRequestID(context.Background(), "req-1")
	src := Source{IPAddress: "203.0.113.7", UserAgent: "test"}
	l.LogRegistered(ctx, "acct-1", "alice", src)
	l.LogLoginSuccess(ctx, "acct-1", "alice", src)
	l.LogLoginFailure(ctx, "alice@example.com", src, "invalid_credentials")
	l.LogLogout(ctx, "acct-1", src)

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	events, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	wantTypes := []EventType{EventTypeLogout, EventTypeLoginFailure, EventTypeLoginSuccess, EventTypeRegistered}
	for i, e := range events {
		if e.Type != wantTypes[i] {
			t.Errorf("event %d type = %s, want %s", i, e.Type, wantTypes[i])
		}
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Errorf("event %d missing id or timestamp: %+v", i, e)
		}
		if e.RequestID != "req-1" {
			t.Errorf("event %d request id = %q", i, e.RequestID)
		}
	}

	failure := events[1]
	if failure.Outcome != OutcomeFailure || failure.Severity != SeverityWarning || failure.ActorName != "alice@example.com" {
		t.Errorf("unexpected failure event %+v", failure)
	}
	var meta map[string]string
	if err := json.Unmarshal(failure.Metadata, &meta); err != nil || meta["reason"] != "invalid_credentials" {
		t.Errorf("metadata = %s, err %v", failure.Metadata, err)
	}

	l.LogLogout(ctx, "acct-1", src)
	if store.Len() != 4 {
		t.Error("events logged after Close should be discarded")
	}
}

func TestLoggerFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *Config
		want int
	}{
		{"disabled", &Config{Enabled: false, MinSeverity: SeverityInfo, BufferSize: 10}, 0},
		{"info keeps all", &Config{Enabled: true, MinSeverity: SeverityInfo, BufferSize: 10}, 2},
		{"warning keeps failures", &Config{Enabled: true, MinSeverity: SeverityWarning, BufferSize: 10}, 1},
		{"critical drops both", &Config{Enabled: true, MinSeverity: SeverityCritical, BufferSize: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewMemoryStore(0)
			l := NewLogger(store, tt.cfg)

			l.LogLoginSuccess(context.Background(), "a", "alice", Source{IPAddress: "127.0.0.1"})
			l.LogLoginFailure(context.Background(), "a@example.com", Source{IPAddress: "127.0.0.1"}, "bad_password")
			_ = l.Close()

			if store.Len() != tt.want {
				t.Errorf("stored %d events, want %d", store.Len(), tt.want)
			}
		})
	}
}

// blockingStore holds every Save until release is closed.
type blockingStore struct {
	*MemoryStore
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (s *blockingStore) Save(ctx context.Context, e *Event) error {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.MemoryStore.Save(ctx, e)
}

func TestLoggerDropsWhenBufferFull(t *testing.T) {
	t.Parallel()

	store := &blockingStore{
		MemoryStore: NewMemoryStore(0),
		release:     make(chan struct{}),
		entered:     make(chan struct{}),
	}
	l := NewLogger(store, &Config{Enabled: true, MinSeverity: SeverityInfo, BufferSize: 1})

	src := Source{IPAddress: "127.0.0.1"}
	l.LogLogout(context.Background(), "first", src)
	<-store.entered

	// The writer is blocked on "first"; "second" fills the buffer.
	l.LogLogout(context.Background(), "second", src)
	l.LogLogout(context.Background(), "dropped", src)

	close(store.release)
	_ = l.Close()

	if store.Len() != 2 {
		t.Fatalf("stored %d events, want 2", store.Len())
	}
	dropped, _ := store.Count(context.Background(), QueryFilter{ActorID: "dropped"})
	if dropped != 0 {
		t.Error("overflow event should have been dropped")
	}
}

type failingStore struct{ *MemoryStore }

func (failingStore) Save(context.Context, *Event) error { return errors.New("disk full") }

func (failingStore) Delete(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk full")
}

func TestLoggerSurvivesStoreErrors(t *testing.T) {
	t.Parallel()

	l := NewLogger(failingStore{NewMemoryStore(0)}, nil)
	l.LogLogout(context.Background(), "a", Source{IPAddress: "127.0.0.1"})
	l.cleanup(context.Background())
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestServeEnforcesRetention(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(0)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -10)
	recent := now.AddDate(0, 0, -2)
	for _, ts := range []time.Time{old, recent} {
		if err := store.Save(context.Background(), &Event{ID: ts.String(), Timestamp: ts}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	l := NewLogger(store, &Config{
		Enabled:         true,
		MinSeverity:     SeverityInfo,
		RetentionDays:   7,
		CleanupInterval: 10 * time.Millisecond,
		BufferSize:      1,
	})
	l.now = func() time.Time { return now }
	defer func() { _ = l.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()

	deadline := time.After(5 * time.Second)
	for store.Len() != 1 {
		select {
		case <-deadline:
			t.Fatalf("retention not enforced, %d events left", store.Len())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
	left, _ := store.Query(context.Background(), QueryFilter{})
	if !left[0].Timestamp.Equal(recent) {
		t.Errorf("wrong event kept: %+v", left[0])
	}
	if l.String() != "audit-retention" {
		t.Errorf("String() = %q", l.String())
	}
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	c := ConfigFrom(&config.AuditConfig{Enabled: true, MinSeverity: "warning", RetentionDays: 30})
	if !c.Enabled || c.MinSeverity != SeverityWarning || c.RetentionDays != 30 {
		t.Errorf("unexpected config %+v", c)
	}
	if c.BufferSize != 1000 || c.CleanupInterval != 24*time.Hour {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestSourceFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "198.51.100.4:41000"
	r.Header.Set("User-Agent", "reelfeed-ios/2.1")

	src := SourceFromRequest(r)
	if src.IPAddress != "198.51.100.4" || src.UserAgent != "reelfeed-ios/2.1" {
		t.Errorf("SourceFromRequest() = %+v", src)
	}
}
