// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/models"
)

// FollowingFeed serves GET /api/feed/following?limit=&cursor=.
//
// A limit that is absent, non-numeric or not positive becomes the default
// page size. Store failures answer 200 with an empty page.
func (h *Handler) FollowingFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.feedContext(r.Context())
	defer cancel()

	limit := getIntParam(r, "limit", 0)
	cursor := r.URL.Query().Get("cursor")

	page, err := h.engine.FollowingFeed(ctx, auth.ViewerID(ctx), limit, cursor)
	switch {
	case errors.Is(err, feed.ErrUnauthenticated):
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	case err != nil:
		logging.Ctx(ctx).Error().Err(err).Str("feed", feed.FeedFollowing).Msg("Serving empty feed after store failure")
		metrics.RecordFeedFailure(feed.FeedFollowing)
		page = &models.FeedPage{Posts: []models.PostView{}}
	}

	writeJSON(w, r, http.StatusOK, page)
}

// ForYouFeed serves GET /api/feed/for-you. Anonymous callers get the same
// ranking without the following boost and with every flag false.
func (h *Handler) ForYouFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.feedContext(r.Context())
	defer cancel()

	page, err := h.engine.ForYouFeed(ctx, auth.ViewerID(ctx))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("feed", feed.FeedForYou).Msg("Serving empty feed after store failure")
		metrics.RecordFeedFailure(feed.FeedForYou)
		page = &models.ForYouPage{Posts: []models.PostView{}}
	}

	writeJSON(w, r, http.StatusOK, page)
}

func (h *Handler) feedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := h.config.Feed.RequestTimeout; timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
