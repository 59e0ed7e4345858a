// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/events"
	"github.com/tomtom215/reelfeed/internal/models"
)

const (
	defaultFollowingListLimit = 20
	maxFollowingListLimit     = 100
)

// LikePost toggles the viewer's like on {postId}.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	h.togglePostEdge(w, r, h.store.ToggleLike, "liked", events.KindLike, events.KindUnlike)
}

// BookmarkPost toggles the viewer's bookmark on {postId}.
func (h *Handler) BookmarkPost(w http.ResponseWriter, r *http.Request) {
	h.togglePostEdge(w, r, h.store.ToggleBookmark, "bookmarked", events.KindBookmark, events.KindUnbookmark)
}

func (h *Handler) togglePostEdge(
	w http.ResponseWriter,
	r *http.Request,
	toggle func(ctx context.Context, userID, postID string) (models.ToggleResult, error),
	field string,
	on, off events.Kind,
) {
	ctx := r.Context()
	viewerID := auth.ViewerID(ctx)
	postID := chi.URLParam(r, "postId")

	res, err := toggle(ctx, viewerID, postID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Post not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update post", err)
		return
	}

	h.emit(ctx, events.NewInteractionEvent(events.ToggleKind(res.Active, on, off), viewerID, postID, res.TargetID))
	respondJSON(w, r, http.StatusOK, map[string]bool{field: res.Active})
}

// ViewPost records that the viewer watched {postId}. Repeat views do not
// count.
func (h *Handler) ViewPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerID(ctx)
	postID := chi.URLParam(r, "postId")

	res, err := h.store.RecordView(ctx, viewerID, postID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Post not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to record view", err)
		return
	}

	if res.FirstView {
		h.emit(ctx, events.NewInteractionEvent(events.KindView, viewerID, postID, res.AuthorID))
	}
	respondJSON(w, r, http.StatusOK, map[string]int64{"viewsCount": res.ViewsCount})
}

// ToggleFollow follows or unfollows {username}.
func (h *Handler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerID(ctx)
	username := chi.URLParam(r, "username")

	res, err := h.store.ToggleFollow(ctx, viewerID, username)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrSelfFollow):
			respondError(w, r, http.StatusBadRequest, ErrCodeSelfFollow, "You cannot follow yourself", nil)
		case errors.Is(err, database.ErrNotFound):
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
		default:
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update follow", err)
		}
		return
	}

	kind := events.ToggleKind(res.Active, events.KindFollow, events.KindUnfollow)
	h.emit(ctx, events.NewInteractionEvent(kind, viewerID, "", res.TargetID))
	respondJSON(w, r, http.StatusOK, map[string]bool{"isFollowing": res.Active})
}

// FollowingList serves GET /api/users/following?limit=&search=.
func (h *Handler) FollowingList(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", defaultFollowingListLimit)
	if limit <= 0 {
		limit = defaultFollowingListLimit
	}
	limit = min(limit, maxFollowingListLimit)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	accounts, err := h.store.FollowedAccounts(r.Context(), auth.ViewerID(r.Context()), search, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load followed accounts", err)
		return
	}
	respondJSON(w, r, http.StatusOK, accounts)
}
