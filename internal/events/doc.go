// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package events carries interaction side effects over a Watermill message bus.

Every like, bookmark, view and follow mutation publishes an InteractionEvent.
Consumers run on a Watermill Router with Recoverer and Retry middleware. The
only consumer today is AccountLikesProjector, which keeps each account's
likesCount in step with likes on its posts.

Transport:

  - Default: in-process gochannel pub/sub.
  - events.nats_enabled: NATS JetStream through watermill-nats, optionally
    backed by an embedded nats-server.

Delivery is at-least-once. Consumers deduplicate on the event ID.

Feeds never read from the bus; they are assembled on read.
*/
package events
