// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"

	"github.com/tomtom215/reelfeed/internal/models"
)

// The engine only reads. The database package implements every interface
// below with a single *database.DB.

// FollowStore enumerates follow edges.
type FollowStore interface {
	// FollowingIDs returns the ids of every account viewerID follows.
	FollowingIDs(ctx context.Context, viewerID string) ([]string, error)
}

// PostStore fetches candidate posts.
type PostStore interface {
	// PostsByAuthors returns up to limit posts by any of authorIDs that lie
	// after before (nil means from the newest), ordered createdAt DESC, id DESC.
	PostsByAuthors(ctx context.Context, authorIDs []string, before *Cursor, limit int) ([]models.Post, error)

	// CandidatePosts returns the limit most recent posts, or all posts when
	// limit is 0, ordered createdAt DESC, id DESC.
	CandidatePosts(ctx context.Context, limit int) ([]models.Post, error)
}

// AccountStore resolves authors.
type AccountStore interface {
	// AccountsByID returns the accounts that exist among ids, keyed by id.
	AccountsByID(ctx context.Context, ids []string) (map[string]models.Account, error)
}

// InteractionStore answers edge-existence questions for one viewer.
type InteractionStore interface {
	// InteractedPostIDs returns the subset of postIDs that have a kind edge
	// from viewerID.
	InteractedPostIDs(ctx context.Context, kind models.InteractionKind, viewerID string, postIDs []string) (map[string]bool, error)
}

// Store is everything the engine reads.
type Store interface {
	FollowStore
	PostStore
	AccountStore
	InteractionStore
}
