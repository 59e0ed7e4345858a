// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"fmt"
)

// FollowSet is the unordered set of accounts a viewer follows.
type FollowSet map[string]struct{}

// Has reports whether id is in the set.
func (s FollowSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in no particular order.
func (s FollowSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// GraphReader resolves a viewer's outgoing follow edges. The whole set is
// materialized; very large fan-out is not paginated.
type GraphReader struct {
	store FollowStore
}

// NewGraphReader creates a GraphReader over store.
func NewGraphReader(store FollowStore) *GraphReader {
	return &GraphReader{store: store}
}

// ResolveFollowing returns the accounts viewerID follows. An anonymous
// viewer follows nobody and costs no store call.
func (g *GraphReader) ResolveFollowing(ctx context.Context, viewerID string) (FollowSet, error) {
	if viewerID == "" {
		return FollowSet{}, nil
	}

	ids, err := g.store.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolve following: %w", err)
	}

	set := make(FollowSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
