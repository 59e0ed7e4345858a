// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service opens, verifies and closes sessions.
type Service struct {
	sessions SessionStore
	tokens   *TokenManager
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a session service. ttl is the lifetime of new sessions.
func NewService(sessions SessionStore, tokens *TokenManager, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// StartSession opens a session for userID and returns its signed token.
func (s *Service) StartSession(ctx context.Context, userID, userAgent, ip string) (string, *Session, error) {
	now := s.now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.Issue(session)
	if err != nil {
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
			s.logger.Warn().Err(delErr).Str("session_id", session.ID).Msg("Failed to remove orphaned session")
		}
		return "", nil, err
	}

	s.logger.Debug().Str("user_id", userID).Str("session_id", session.ID).Msg("Session started")
	return token, session, nil
}

// Authenticate resolves token to its live session. Any failure that is the
// client's fault wraps ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: session belongs to another account", ErrInvalidToken)
	}
	return session, nil
}

// EndSession revokes the session behind token. Tokens that no longer
// validate are ignored.
func (s *Service) EndSession(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil //nolint:nilerr // nothing to revoke
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
