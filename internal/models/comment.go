// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package models

import "time"

// MaxCommentLength is the longest comment text accepted, in characters.
const MaxCommentLength = 500

// Comment is a stored comment on a post. ParentID is set on replies and
// always names a comment on the same post.
type Comment struct {
	ID         string
	PostID     string
	AuthorID   string
	ParentID   *string
	Text       string
	LikesCount int64
	CreatedAt  time.Time
}

// CommentView is a comment as served to one viewer.
type CommentView struct {
	ID         string        `json:"_id"`
	PostID     string        `json:"post"`
	Parent     *string       `json:"parent"`
	Text       string        `json:"text"`
	LikesCount int64         `json:"likesCount"`
	LikedByMe  bool          `json:"likedByMe"`
	CreatedAt  time.Time     `json:"createdAt"`
	Author     AuthorSummary `json:"author"`
}

// CommentPage is one page of a post's top-level comments, newest first.
type CommentPage struct {
	Comments   []CommentView `json:"comments"`
	NextCursor *string       `json:"nextCursor"`
}
