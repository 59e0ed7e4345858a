// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package models

import "time"

// InteractionKind names one of the (user, post) edge relations.
type InteractionKind string

const (
	InteractionLike     InteractionKind = "like"
	InteractionBookmark InteractionKind = "bookmark"
	InteractionView     InteractionKind = "view"
)

// FollowEdge is a directed follow. At most one exists per ordered pair and
// FollowerID never equals FollowingID.
type FollowEdge struct {
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}

// ToggleResult reports the state of an edge after a toggle.
type ToggleResult struct {
	// Active is true when the edge exists after the toggle.
	Active bool
	// TargetID is the account on the other side: the post author for
	// likes and bookmarks, the comment author for comment likes, the
	// followed account for follows.
	TargetID string
}

// ViewResult reports the outcome of recording a view.
type ViewResult struct {
	ViewsCount int64
	AuthorID   string
	// FirstView is false when the viewer had already seen the post.
	FirstView bool
}
