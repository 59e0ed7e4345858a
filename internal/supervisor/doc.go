// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package supervisor runs the long-lived parts of reelfeed under suture v4.

	RootSupervisor ("reelfeed")
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService (if events are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's failure decay and backoff.
Supervisor events are logged through sutureslog on the service's slog bridge.

DuckDB, badger and redis are not supervised. They are libraries or clients
owned by main and closed after the tree stops.

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning an error restarts the service; returning after ctx is canceled
ends it. The service wrappers live in the services subpackage.
*/
package supervisor
