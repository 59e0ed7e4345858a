// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package models holds the shared domain types: accounts, posts, social and
// interaction edges, the public post projection served by the feeds, and the
// API response envelope.
package models

import "time"

// PostKind is the media kind of a post.
type PostKind string

const (
	PostKindVideo PostKind = "video"
	PostKindImage PostKind = "image"
)

// Valid reports whether k is a known kind.
func (k PostKind) Valid() bool {
	return k == PostKindVideo || k == PostKindImage
}

// MaxCaptionLength is the longest caption accepted at creation.
const MaxCaptionLength = 2200

// Post is a stored post. Counters are only changed by interaction
// collaborators through atomic increments.
type Post struct {
	ID           string
	AuthorID     string
	Kind         PostKind
	MediaURL     string
	ThumbnailURL *string
	Caption      *string
	// Duration is in seconds and only set for video.
	Duration      *float64
	ViewsCount    int64
	LikesCount    int64
	CommentsCount int64
	BookmarkCount int64
	SharesCount   int64
	// IsPrivate is stored but not filtered on by any feed.
	IsPrivate bool
	CreatedAt time.Time
}

// AuthorSummary is the minimal author embedded in a feed item.
type AuthorSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// PostView is the public projection of a post for a specific viewer.
// It never carries ranking internals.
type PostView struct {
	ID             string        `json:"_id"`
	Type           PostKind      `json:"type"`
	MediaURL       string        `json:"mediaUrl"`
	ThumbnailURL   *string       `json:"thumbnailUrl,omitempty"`
	Caption        *string       `json:"caption,omitempty"`
	Duration       *float64      `json:"duration,omitempty"`
	ViewsCount     int64         `json:"viewsCount"`
	LikesCount     int64         `json:"likesCount"`
	CommentsCount  int64         `json:"commentsCount"`
	BookmarkCount  int64         `json:"bookmarkCount"`
	SharesCount    int64         `json:"sharesCount"`
	CreatedAt      time.Time     `json:"createdAt"`
	Author         AuthorSummary `json:"author"`
	LikedByMe      bool          `json:"likedByMe"`
	BookmarkedByMe bool          `json:"bookmarkedByMe"`
}

// FeedPage is one page of the following feed. NextCursor is nil at the end.
type FeedPage struct {
	Posts      []PostView `json:"posts"`
	NextCursor *string    `json:"nextCursor"`
}

// ForYouPage is the single-page for-you feed.
type ForYouPage struct {
	Posts []PostView `json:"posts"`
}
