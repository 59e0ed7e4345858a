// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package models

import "time"

// Role values carried on accounts.
const (
	RoleMember    = "member"
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

// DefaultAvatar is served when an account has no avatar set.
const DefaultAvatar = "/avatar/default.jpg"

// Account is a registered user. PasswordHash never leaves the server.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Avatar         string    `json:"avatar,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	LikesCount     int64     `json:"likesCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary returns the author summary embedded in feed items.
func (a *Account) Summary() AuthorSummary {
	return AuthorSummary{ID: a.ID, Username: a.Username, Avatar: a.Avatar}
}

// FollowedAccount is an entry of the "accounts I follow" list.
type FollowedAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Profile is an account's public page as seen by one viewer.
type Profile struct {
	ID             string    `json:"_id"`
	Username       string    `json:"username"`
	Avatar         string    `json:"avatar"`
	Bio            string    `json:"bio"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	LikesCount     int64     `json:"likesCount"`
	CreatedAt      time.Time `json:"createdAt"`
	IsMe           bool      `json:"isMe"`
	IsFollowing    bool      `json:"isFollowing"`
}

// Suggestion reasons, strongest first.
const (
	SuggestFollowsYou     = "follows_you"
	SuggestCommonFollows  = "common_follows"
	SuggestRecentlyActive = "recently_active"
	SuggestNew            = "new"
)

// SuggestedAccount is an account the viewer does not follow yet.
type SuggestedAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	// Reason is the strongest signal that ranked the account.
	Reason string `json:"reason"`
}
