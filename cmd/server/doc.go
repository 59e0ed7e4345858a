// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Command server runs the reelfeed HTTP service.

Startup order:

 1. Configuration: koanf defaults, optional config.yaml, environment
 2. Logging: zerolog, with an slog bridge for suture and watermill
 3. DuckDB store
 4. Feed engine
 5. Sessions: badger store and JWT tokens
 6. Redis client, when REDIS_ADDR is set, for shared rate limit counters
 7. Interaction events, when EVENTS_ENABLED is true: gochannel or NATS
    JetStream bus, publisher and the account likes projector
 8. Security audit trail, when AUDIT_ENABLED is true: audit_events table
    in the same DuckDB database and an async writer
 9. HTTP server

Long-running parts run under the supervisor tree:

	RootSupervisor ("reelfeed")
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-router
	└── APISupervisor ("api-layer")
	    ├── audit-retention
	    └── http-server

SIGINT and SIGTERM cancel the tree. The HTTP server drains for up to 10s,
then the audit log is flushed and the event bus, sessions and database are
closed in reverse order.

Example:

	export JWT_SECRET=$(openssl rand -base64 48)
	export DUCKDB_PATH=./reelfeed.duckdb
	export SESSION_PATH=./sessions
	./server
*/
package main
