// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"sort"
	"time"

	"github.com/tomtom215/reelfeed/internal/models"
)

// Both feeds run the same typed stages:
//
//	filter -> join -> score -> sort -> limit -> project
//
// Stages are pure. Store reads happen between them in the engine.

// candidate is a post joined with its author and, for the for-you feed, its
// score. It never leaves the package.
type candidate struct {
	post   models.Post
	author models.AuthorSummary
	score  float64
}

// filterCandidates keeps the posts for which keep returns true, preserving order.
func filterCandidates(posts []models.Post, keep func(*models.Post) bool) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		if keep(&posts[i]) {
			out = append(out, posts[i])
		}
	}
	return out
}

// joinAuthors attaches author summaries. Posts whose author is missing are
// dropped.
func joinAuthors(posts []models.Post, accounts map[string]models.Account) []candidate {
	out := make([]candidate, 0, len(posts))
	for i := range posts {
		acct, ok := accounts[posts[i].AuthorID]
		if !ok {
			continue
		}
		out = append(out, candidate{post: posts[i], author: acct.Summary()})
	}
	return out
}

// recencyBoost is 1/(hours+1): 1 at creation and decaying toward 0. Posts
// dated in the future count as brand new.
func recencyBoost(createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return 1 / (hours + 1)
}

// scorePost computes the composite for-you score of one post.
func scorePost(p *models.Post, followed bool, now time.Time, w Weights) float64 {
	score := float64(p.LikesCount)*w.Like +
		float64(p.CommentsCount)*w.Comment +
		float64(p.ViewsCount)*w.View +
		recencyBoost(p.CreatedAt, now)
	if followed {
		score += w.FollowingBoost
	}
	return score
}

// scoreCandidates sets the score of every candidate in place.
func scoreCandidates(cands []candidate, following FollowSet, now time.Time, w Weights) []candidate {
	for i := range cands {
		cands[i].score = scorePost(&cands[i].post, following.Has(cands[i].post.AuthorID), now, w)
	}
	return cands
}

// sortByScore orders by score descending. Equal scores keep their input order.
func sortByScore(cands []candidate) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
	return cands
}

// limitCandidates truncates to at most k.
func limitCandidates(cands []candidate, k int) []candidate {
	if len(cands) > k {
		return cands[:k]
	}
	return cands
}

// projectCandidates builds the public view. Interaction flags start false
// and are set by the Annotator.
func projectCandidates(cands []candidate) []models.PostView {
	out := make([]models.PostView, len(cands))
	for i := range cands {
		p := &cands[i].post
		out[i] = models.PostView{
			ID:            p.ID,
			Type:          p.Kind,
			MediaURL:      p.MediaURL,
			ThumbnailURL:  p.ThumbnailURL,
			Caption:       p.Caption,
			Duration:      p.Duration,
			ViewsCount:    p.ViewsCount,
			LikesCount:    p.LikesCount,
			CommentsCount: p.CommentsCount,
			BookmarkCount: p.BookmarkCount,
			SharesCount:   p.SharesCount,
			CreatedAt:     p.CreatedAt,
			Author:        cands[i].author,
		}
	}
	return out
}

// authorIDs returns the distinct author ids of posts.
func authorIDs(posts []models.Post) []string {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for i := range posts {
		if _, ok := seen[posts[i].AuthorID]; ok {
			continue
		}
		seen[posts[i].AuthorID] = struct{}{}
		ids = append(ids, posts[i].AuthorID)
	}
	return ids
}
