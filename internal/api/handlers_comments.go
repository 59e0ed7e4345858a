// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/events"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/models"
)

const (
	defaultCommentPageSize = 20
	maxCommentPageSize     = 100
)

// CreateCommentRequest is the body of POST /api/posts/{postId}/comments.
type CreateCommentRequest struct {
	Text   string  `json:"text" validate:"required,max=500"`
	Parent *string `json:"parent,omitempty" validate:"omitempty,min=1,max=64"`
}

// CreateComment adds the viewer's comment to {postId}. Text is trimmed and
// must not be blank.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Comment text is required", nil)
		return
	}

	ctx := r.Context()
	author, err := h.store.AccountByID(ctx, auth.ViewerID(ctx))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to add comment", err)
		return
	}

	c := &models.Comment{
		PostID:   chi.URLParam(r, "postId"),
		AuthorID: author.ID,
		ParentID: req.Parent,
		Text:     text,
	}
	postAuthorID, err := h.store.CreateComment(ctx, c)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Post not found", nil)
		case errors.Is(err, database.ErrInvalidParent):
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Parent comment not found on this post", nil)
		default:
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to add comment", err)
		}
		return
	}

	logging.Ctx(ctx).Info().Str("comment_id", c.ID).Str("post_id", c.PostID).Msg("Comment created")
	h.emit(ctx, events.NewInteractionEvent(events.KindComment, author.ID, c.PostID, postAuthorID))

	summary := author.Summary()
	if summary.Avatar == "" {
		summary.Avatar = models.DefaultAvatar
	}
	respondJSON(w, r, http.StatusCreated, &models.CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Parent:    c.ParentID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		Author:    summary,
	})
}

// ListComments serves GET /api/posts/{postId}/comments?limit=&cursor=, the
// post's top-level comments newest first. An unreadable cursor yields an
// empty final page.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "postId")

	limit := getIntParam(r, "limit", defaultCommentPageSize)
	if limit <= 0 {
		limit = defaultCommentPageSize
	}
	limit = min(limit, maxCommentPageSize)

	var before *feed.Cursor
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		c, err := feed.ParseCursor(raw)
		if err != nil {
			respondJSON(w, r, http.StatusOK, &models.CommentPage{Comments: []models.CommentView{}})
			return
		}
		before = &c
	}

	fetched, err := h.store.CommentsByPost(ctx, postID, auth.ViewerID(ctx), before, limit+1)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Post not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load comments", err)
		return
	}

	page := &models.CommentPage{Comments: fetched}
	if len(fetched) > limit {
		page.Comments = fetched[:limit]
		last := page.Comments[limit-1]
		next := feed.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.String()
		page.NextCursor = &next
	}
	respondJSON(w, r, http.StatusOK, page)
}

// LikeComment toggles the viewer's like on {commentId}.
func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerID(ctx)

	res, err := h.store.ToggleCommentLike(ctx, viewerID, chi.URLParam(r, "commentId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Comment not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update comment", err)
		return
	}

	kind := events.ToggleKind(res.Active, events.KindCommentLike, events.KindCommentUnlike)
	h.emit(ctx, events.NewInteractionEvent(kind, viewerID, "", res.TargetID))
	respondJSON(w, r, http.StatusOK, map[string]bool{"liked": res.Active})
}
