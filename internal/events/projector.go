// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/metrics"
)

// LikeCounterStore applies a like delta to an account at most once per
// event ID. applied is false for replays and for unknown accounts.
type LikeCounterStore interface {
	ApplyLikeDelta(ctx context.Context, eventID, kind, accountID string, delta int) (applied bool, err error)
}

// AccountLikesProjector keeps Account.likesCount in step with like and
// unlike events on the account's posts.
type AccountLikesProjector struct {
	store  LikeCounterStore
	logger zerolog.Logger
}

// NewAccountLikesProjector creates the projector.
func NewAccountLikesProjector(store LikeCounterStore, logger zerolog.Logger) *AccountLikesProjector {
	return &AccountLikesProjector{
		store:  store,
		logger: logger.With().Str("component", "account-likes-projector").Logger(),
	}
}

// Register adds the projector to router as a consumer of topic.
func (p *AccountLikesProjector) Register(router *Router, topic string, subscriber message.Subscriber) {
	router.AddConsumerHandler("account_likes_projector", topic, subscriber, p.Handle)
}

// Handle applies one message. Malformed payloads are acked and dropped since
// redelivery cannot fix them; store errors are returned for retry.
func (p *AccountLikesProjector) Handle(msg *message.Message) error {
	event, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		p.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed interaction event")
		metrics.RecordEventConsumed("unknown", "malformed")
		return nil
	}

	if event.Kind != KindLike && event.Kind != KindUnlike {
		metrics.RecordEventConsumed(string(event.Kind), "ignored")
		return nil
	}

	applied, err := p.store.ApplyLikeDelta(msg.Context(), event.EventID, string(event.Kind), event.TargetAccountID, event.Delta)
	if err != nil {
		metrics.RecordEventConsumed(string(event.Kind), "failed")
		return fmt.Errorf("apply like delta for event %s: %w", event.EventID, err)
	}

	outcome := "applied"
	if !applied {
		outcome = "duplicate"
	}
	metrics.RecordEventConsumed(string(event.Kind), outcome)

	p.logger.Debug().
		Str("event_id", event.EventID).
		Str("account_id", event.TargetAccountID).
		Int("delta", event.Delta).
		Str("outcome", outcome).
		Msg("Account likes projected")
	return nil
}
