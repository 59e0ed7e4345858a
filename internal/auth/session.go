// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when no session exists for an ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session exists but is past ExpiresAt.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidToken is returned for tokens that fail signature, expiry or
	// session ownership checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session is a server-side login. Its ID is the token's "sid" claim.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserAgent string    `json:"user_agent,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has expired.
func (s *Session) IsExpired() bool {
	return s.expiredAt(time.Now())
}

func (s *Session) expiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	// Get returns ErrSessionNotFound or ErrSessionExpired when the session
	// cannot be used.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete is a no-op for unknown IDs.
	Delete(ctx context.Context, id string) error
}
