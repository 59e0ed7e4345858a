// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/audit"
	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/events"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

const testJWTSecret = "api-test-secret-with-more-than-32-characters"

// testDBSemaphore serializes DuckDB usage across tests in this package.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := database.New(&config.DatabaseConfig{
		Path:                   ":memory:",
		MaxMemory:              "512MB",
		PreserveInsertionOrder: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return db
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.InteractionEvent
}

func (e *recordingEmitter) Emit(_ context.Context, event *events.InteractionEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) kinds() []events.Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]events.Kind, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Kind
	}
	return out
}

func (e *recordingEmitter) last() *events.InteractionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return nil
	}
	return e.events[len(e.events)-1]
}

type testEnv struct {
	db       *database.DB
	sessions *auth.Service
	emitter  *recordingEmitter
	auditLog *audit.Logger
	audits   *audit.MemoryStore
	server   http.Handler
}

type envOptions struct {
	feedStore feed.Store
	redis     *redis.Client
	configure func(cfg *config.Config)
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Feed: config.FeedConfig{
			ForYouSize:     10,
			MaxCandidates:  0,
			FollowingBoost: 50,
			LikeWeight:     2,
			CommentWeight:  3,
			ViewWeight:     0.1,
			RequestTimeout: 5 * time.Second,
		},
		Security: config.SecurityConfig{
			JWTSecret:        testJWTSecret,
			SessionTTL:       time.Hour,
			RateLimitReqs:    1000,
			RateLimitWindow:  time.Minute,
			LoginLimitReqs:   100,
			LoginLimitWindow: time.Minute,
		},
		Redis: config.RedisConfig{KeyPrefix: "test:ratelimit:"},
	}
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	cfg := testConfig()
	if opts.configure != nil {
		opts.configure(cfg)
	}

	db := setupTestDB(t)
	var feedStore feed.Store = db
	if opts.feedStore != nil {
		feedStore = opts.feedStore
	}
	engine, err := feed.NewEngine(feedStore, cfg.FeedEngineConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	bdb, err := auth.OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = bdb.Close() })

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	sessions := auth.NewService(auth.NewBadgerSessionStore(bdb), tokens, cfg.Security.SessionTTL, zerolog.Nop())

	emitter := &recordingEmitter{}
	handler := NewHandler(db, engine, sessions, emitter, cfg)
	audits := audit.NewMemoryStore(0)
	auditLog := audit.NewLogger(audits, nil)
	t.Cleanup(func() { _ = auditLog.Close() })
	handler.SetAuditor(auditLog)
	chiMw := NewChiMiddleware(ChiMiddlewareConfigFromConfig(cfg, opts.redis), zerolog.Nop())
	router := NewRouter(handler, auth.NewMiddleware(sessions), chiMw)

	return &testEnv{
		db:       db,
		sessions: sessions,
		emitter:  emitter,
		auditLog: auditLog,
		audits:   audits,
		server:   router.Setup(),
	}
}

// auditTrail flushes the audit logger and returns the recorded events,
// newest first. No further events are recorded afterwards.
func (env *testEnv) auditTrail(t *testing.T) []audit.Event {
	t.Helper()
	if err := env.auditLog.Close(); err != nil {
		t.Fatalf("close audit log: %v", err)
	}
	events, err := env.audits.Query(context.Background(), audit.QueryFilter{})
	if err != nil {
		t.Fatalf("query audit log: %v", err)
	}
	return events
}

// createUser inserts an account directly and opens a session for it.
func (env *testEnv) createUser(t *testing.T, username string) (acct *models.Account, token string) {
	t.Helper()
	acct = &models.Account{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "$2a$04$unused",
	}
	if err := env.db.CreateAccount(context.Background(), acct); err != nil {
		t.Fatalf("CreateAccount(%s): %v", username, err)
	}
	token, _, err := env.sessions.StartSession(context.Background(), acct.ID, "test", "192.0.2.1")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return acct, token
}

// do sends a request with an optional JSON body and bearer token.
func (env *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors models.APIResponse with undecoded data.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) *envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %q: %v", env.Data, err)
		}
	}
	return &env
}

func decodeFeed(t *testing.T, rec *httptest.ResponseRecorder) *models.FeedPage {
	t.Helper()
	var page models.FeedPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode feed %q: %v", rec.Body.String(), err)
	}
	return &page
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func createPost(t *testing.T, env *testEnv, token string) *models.PostView {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/posts", map[string]interface{}{
		"type":     "video",
		"mediaUrl": "https://cdn.example.com/clip.mp4",
	}, token)
	expectStatus(t, rec, http.StatusCreated)
	var view models.PostView
	decodeEnvelope(t, rec, &view)
	return &view
}
