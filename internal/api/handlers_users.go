// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/models"
)

const (
	defaultSuggestedLimit = 10
	maxSuggestedLimit     = 50
)

// Profile serves GET /api/users/{username}. Signed-in viewers also learn
// whether the page is theirs and whether they follow it.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerID(ctx)

	acct, err := h.store.AccountByUsername(ctx, chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load profile", err)
		return
	}

	profile := &models.Profile{
		ID:             acct.ID,
		Username:       acct.Username,
		Avatar:         acct.Avatar,
		Bio:            acct.Bio,
		FollowersCount: acct.FollowersCount,
		FollowingCount: acct.FollowingCount,
		LikesCount:     acct.LikesCount,
		CreatedAt:      acct.CreatedAt,
		IsMe:           viewerID != "" && viewerID == acct.ID,
	}
	if profile.Avatar == "" {
		profile.Avatar = models.DefaultAvatar
	}
	if viewerID != "" && !profile.IsMe {
		profile.IsFollowing, err = h.store.IsFollowing(ctx, viewerID, acct.ID)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load profile", err)
			return
		}
	}

	respondJSON(w, r, http.StatusOK, profile)
}

// UserPosts serves GET /api/users/{username}/posts?limit=&cursor=, the
// account's posts newest first with the following feed's paging rules.
func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.feedContext(r.Context())
	defer cancel()

	acct, err := h.store.AccountByUsername(ctx, chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load posts", err)
		return
	}

	page, err := h.engine.AuthorFeed(ctx, auth.ViewerID(ctx), acct.ID, getIntParam(r, "limit", 0), r.URL.Query().Get("cursor"))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("feed", feed.FeedAuthor).Msg("Serving empty feed after store failure")
		metrics.RecordFeedFailure(feed.FeedAuthor)
		page = &models.FeedPage{Posts: []models.PostView{}}
	}

	writeJSON(w, r, http.StatusOK, page)
}

// SuggestedUsers serves GET /api/users/suggested?limit=, accounts the
// viewer may want to follow. Self and followed accounts never appear.
func (h *Handler) SuggestedUsers(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", defaultSuggestedLimit)
	if limit <= 0 {
		limit = defaultSuggestedLimit
	}
	limit = min(limit, maxSuggestedLimit)

	accounts, err := h.store.SuggestedAccounts(r.Context(), auth.ViewerID(r.Context()), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load suggestions", err)
		return
	}
	respondJSON(w, r, http.StatusOK, accounts)
}
