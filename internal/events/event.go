// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Kind names an interaction event.
type Kind string

const (
	KindLike       Kind = "like"
	KindUnlike     Kind = "unlike"
	KindBookmark   Kind = "bookmark"
	KindUnbookmark Kind = "unbookmark"
	KindFollow     Kind = "follow"
	KindUnfollow   Kind = "unfollow"
	KindView       Kind = "view"

	KindComment       Kind = "comment"
	KindCommentLike   Kind = "comment_like"
	KindCommentUnlike Kind = "comment_unlike"
)

var validKinds = map[Kind]bool{
	KindLike: true, KindUnlike: true,
	KindBookmark: true, KindUnbookmark: true,
	KindFollow: true, KindUnfollow: true,
	KindView: true,
	KindComment: true, KindCommentLike: true, KindCommentUnlike: true,
}

// ErrInvalidEvent is returned for events that fail validation.
var ErrInvalidEvent = errors.New("invalid interaction event")

// InteractionEvent records one completed interaction mutation.
type InteractionEvent struct {
	EventID string `json:"eventId"`
	Kind    Kind   `json:"kind"`
	ActorID string `json:"actorId"`
	PostID  string `json:"postId,omitempty"`
	// TargetAccountID is the post author for post interactions and
	// comments, the comment author for comment likes and the followed
	// account for follows.
	TargetAccountID string    `json:"targetAccountId"`
	Delta           int       `json:"delta"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// NewInteractionEvent builds an event with a fresh ID. Delta is -1 for the
// reversal kinds and +1 otherwise.
func NewInteractionEvent(kind Kind, actorID, postID, targetAccountID string) *InteractionEvent {
	delta := 1
	switch kind {
	case KindUnlike, KindUnbookmark, KindUnfollow, KindCommentUnlike:
		delta = -1
	}
	return &InteractionEvent{
		EventID:         uuid.New().String(),
		Kind:            kind,
		ActorID:         actorID,
		PostID:          postID,
		TargetAccountID: targetAccountID,
		Delta:           delta,
		OccurredAt:      time.Now().UTC(),
	}
}

// ToggleKind picks the event kind for a toggle that left the edge active or
// inactive.
func ToggleKind(active bool, on, off Kind) Kind {
	if active {
		return on
	}
	return off
}

// Validate checks the fields every consumer relies on.
func (e *InteractionEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	}
	if !validKinds[e.Kind] {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	if e.ActorID == "" || e.TargetAccountID == "" {
		return fmt.Errorf("%w: missing actor or target", ErrInvalidEvent)
	}
	if e.Delta != 1 && e.Delta != -1 {
		return fmt.Errorf("%w: delta must be +1 or -1, got %d", ErrInvalidEvent, e.Delta)
	}
	return nil
}

// Marshal serializes the event as JSON.
func (e *InteractionEvent) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent parses and validates a JSON payload.
func UnmarshalEvent(data []byte) (*InteractionEvent, error) {
	var e InteractionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
