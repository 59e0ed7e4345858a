// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"fmt"

	"github.com/tomtom215/reelfeed/internal/models"
)

// Annotator sets the viewer-relative likedByMe and bookmarkedByMe flags.
// Flags are looked up on every call and never cached across viewers.
type Annotator struct {
	store InteractionStore
}

// NewAnnotator creates an Annotator over store.
func NewAnnotator(store InteractionStore) *Annotator {
	return &Annotator{store: store}
}

// Annotate sets the flags on posts in place. For an anonymous viewer both
// flags are false and the store is not consulted.
func (a *Annotator) Annotate(ctx context.Context, posts []models.PostView, viewerID string) error {
	for i := range posts {
		posts[i].LikedByMe = false
		posts[i].BookmarkedByMe = false
	}
	if viewerID == "" || len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	liked, err := a.store.InteractedPostIDs(ctx, models.InteractionLike, viewerID, ids)
	if err != nil {
		return fmt.Errorf("lookup likes: %w", err)
	}
	bookmarked, err := a.store.InteractedPostIDs(ctx, models.InteractionBookmark, viewerID, ids)
	if err != nil {
		return fmt.Errorf("lookup bookmarks: %w", err)
	}

	for i := range posts {
		posts[i].LikedByMe = liked[posts[i].ID]
		posts[i].BookmarkedByMe = bookmarked[posts[i].ID]
	}
	return nil
}
