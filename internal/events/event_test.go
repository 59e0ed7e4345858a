// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"errors"
	"testing"
)

func TestNewInteractionEventDelta(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind Kind
		want int
	}{
		{KindLike, 1},
		{KindUnlike, -1},
		{KindBookmark, 1},
		{KindUnbookmark, -1},
		{KindFollow, 1},
		{KindUnfollow, -1},
		{KindView, 1},
		{KindComment, 1},
		{KindCommentLike, 1},
		{KindCommentUnlike, -1},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			e := NewInteractionEvent(tt.kind, "actor", "post", "target")
			if e.Delta != tt.want {
				t.Errorf("Delta = %d, want %d", e.Delta, tt.want)
			}
			if e.EventID == "" || e.OccurredAt.IsZero() {
				t.Errorf("event not initialized: %+v", e)
			}
			if err := e.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestToggleKind(t *testing.T) {
	t.Parallel()
	if got := ToggleKind(true, KindLike, KindUnlike); got != KindLike {
		t.Errorf("active toggle = %s", got)
	}
	if got := ToggleKind(false, KindFollow, KindUnfollow); got != KindUnfollow {
		t.Errorf("inactive toggle = %s", got)
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	valid := func() InteractionEvent {
		return *NewInteractionEvent(KindLike, "actor", "post", "target")
	}
	tests := []struct {
		name   string
		mutate func(e *InteractionEvent)
	}{
		{"missing id", func(e *InteractionEvent) { e.EventID = "" }},
		{"unknown kind", func(e *InteractionEvent) { e.Kind = "share" }},
		{"missing actor", func(e *InteractionEvent) { e.ActorID = "" }},
		{"missing target", func(e *InteractionEvent) { e.TargetAccountID = "" }},
		{"zero delta", func(e *InteractionEvent) { e.Delta = 0 }},
		{"large delta", func(e *InteractionEvent) { e.Delta = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := valid()
			tt.mutate(&e)
			if err := e.Validate(); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Validate() = %v, want ErrInvalidEvent", err)
			}
			if _, err := e.Marshal(); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Marshal() = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestUnmarshalEvent(t *testing.T) {
	t.Parallel()
	e := NewInteractionEvent(KindUnlike, "actor", "post", "target")
	data, err := e.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("UnmarshalEvent: %v", err)
	}
	if got.EventID != e.EventID || got.Kind != KindUnlike || got.Delta != -1 || got.PostID != "post" {
		t.Errorf("UnmarshalEvent() = %+v", got)
	}

	for _, payload := range []string{"", "{", `{"kind":"like"}`} {
		if _, err := UnmarshalEvent([]byte(payload)); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("UnmarshalEvent(%q) = %v, want ErrInvalidEvent", payload, err)
		}
	}
}
