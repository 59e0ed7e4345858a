// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelfeed/internal/audit"
	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/events"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

// Store is the persistence the handlers need beyond the feed engine.
type Store interface {
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, acct *models.Account) error
	AccountByID(ctx context.Context, id string) (*models.Account, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountByUsername(ctx context.Context, username string) (*models.Account, error)

	CreatePost(ctx context.Context, post *models.Post) error

	ToggleLike(ctx context.Context, userID, postID string) (models.ToggleResult, error)
	ToggleBookmark(ctx context.Context, userID, postID string) (models.ToggleResult, error)
	RecordView(ctx context.Context, userID, postID string) (models.ViewResult, error)
	ToggleFollow(ctx context.Context, followerID, targetUsername string) (models.ToggleResult, error)
	FollowedAccounts(ctx context.Context, viewerID, search string, limit int) ([]models.FollowedAccount, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	SuggestedAccounts(ctx context.Context, viewerID string, limit int) ([]models.SuggestedAccount, error)

	CreateComment(ctx context.Context, c *models.Comment) (postAuthorID string, err error)
	CommentsByPost(ctx context.Context, postID, viewerID string, before *feed.Cursor, limit int) ([]models.CommentView, error)
	ToggleCommentLike(ctx context.Context, userID, commentID string) (models.ToggleResult, error)
}

// EventEmitter publishes interaction events without failing the caller.
type EventEmitter interface {
	Emit(ctx context.Context, event *events.InteractionEvent)
}

// Auditor records the account security trail.
type Auditor interface {
	LogRegistered(ctx context.Context, accountID, username string, source audit.Source)
	LogLoginSuccess(ctx context.Context, accountID, username string, source audit.Source)
	LogLoginFailure(ctx context.Context, email string, source audit.Source, reason string)
	LogLogout(ctx context.Context, accountID string, source audit.Source)
}

// nopAuditor is used when auditing is disabled.
type nopAuditor struct{}

func (nopAuditor) LogRegistered(context.Context, string, string, audit.Source)   {}
func (nopAuditor) LogLoginSuccess(context.Context, string, string, audit.Source) {}
func (nopAuditor) LogLoginFailure(context.Context, string, audit.Source, string) {}
func (nopAuditor) LogLogout(context.Context, string, audit.Source)               {}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	store    Store
	engine   *feed.Engine
	sessions *auth.Service
	events   EventEmitter
	audit    Auditor
	config   *config.Config
	started  time.Time
}

// NewHandler creates the handlers. emitter may be nil when events are off.
func NewHandler(store Store, engine *feed.Engine, sessions *auth.Service, emitter EventEmitter, cfg *config.Config) *Handler {
	return &Handler{
		store:    store,
		engine:   engine,
		sessions: sessions,
		events:   emitter,
		audit:    nopAuditor{},
		config:   cfg,
		started:  time.Now(),
	}
}

// SetAuditor enables the security audit trail. A nil auditor disables it.
func (h *Handler) SetAuditor(a Auditor) {
	if a == nil {
		h.audit = nopAuditor{}
		return
	}
	h.audit = a
}

func (h *Handler) emit(ctx context.Context, event *events.InteractionEvent) {
	if h.events != nil {
		h.events.Emit(ctx, event)
	}
}
