// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package audit records the account security trail: registrations, login
// attempts and logouts.
//
// # Overview
//
// Events are queued on a buffered channel and written by a single background
// goroutine, so request handlers never wait on storage. When the buffer is
// full the event is dropped and a warning is logged.
//
// Two stores are provided:
//   - DuckDBStore persists events in the audit_events table of the main
//     DuckDB database
//   - MemoryStore keeps a bounded in-process log for tests and development
//
// # Event Types
//
//   - account.registered: a new account was created
//   - auth.login_success: credentials were accepted and a session started
//   - auth.login_failure: credentials were rejected
//   - auth.logout: a session was ended
//
// # Retention
//
// Logger implements the supervisor service interface. While it is served,
// events older than the configured retention are deleted on every cleanup
// tick.
//
// # Usage
//
//	store := audit.NewDuckDBStore(db.Conn())
//	if err := store.CreateTable(ctx); err != nil {
//	    return err
//	}
//	auditLog := audit.NewLogger(store, audit.ConfigFrom(&cfg.Audit))
//	defer auditLog.Close()
//
//	auditLog.LogLoginFailure(r.Context(), email, audit.SourceFromRequest(r), "invalid_credentials")
package audit
