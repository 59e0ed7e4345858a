// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"net/http"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/models"
)

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Type         string   `json:"type" validate:"required,oneof=video image"`
	MediaURL     string   `json:"mediaUrl" validate:"required,url,max=2048"`
	ThumbnailURL *string  `json:"thumbnailUrl,omitempty" validate:"omitempty,url,max=2048"`
	Caption      *string  `json:"caption,omitempty" validate:"omitempty,max=2200"`
	Duration     *float64 `json:"duration,omitempty" validate:"omitempty,gt=0"`
	IsPrivate    bool     `json:"isPrivate"`
}

// CreatePost publishes a post by the viewer.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	author, err := h.store.AccountByID(ctx, auth.ViewerID(ctx))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create post", err)
		return
	}

	post := &models.Post{
		AuthorID:     author.ID,
		Kind:         models.PostKind(req.Type),
		MediaURL:     req.MediaURL,
		ThumbnailURL: req.ThumbnailURL,
		Caption:      req.Caption,
		IsPrivate:    req.IsPrivate,
	}
	if post.Kind == models.PostKindVideo {
		post.Duration = req.Duration
	}
	if err := h.store.CreatePost(ctx, post); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create post", err)
		return
	}

	logging.Ctx(ctx).Info().Str("post_id", post.ID).Str("type", req.Type).Msg("Post created")

	summary := author.Summary()
	if summary.Avatar == "" {
		summary.Avatar = models.DefaultAvatar
	}
	respondJSON(w, r, http.StatusCreated, &models.PostView{
		ID:           post.ID,
		Type:         post.Kind,
		MediaURL:     post.MediaURL,
		ThumbnailURL: post.ThumbnailURL,
		Caption:      post.Caption,
		Duration:     post.Duration,
		CreatedAt:    post.CreatedAt,
		Author:       summary,
	})
}
