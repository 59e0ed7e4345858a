// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package services adapts reelfeed's long-running components to
// suture.Service so the supervisor tree can restart them.
//
//   - HTTPServerService wraps *http.Server (ListenAndServe/Shutdown).
//   - EventRouterService runs the watermill consumer router. A watermill
//     router cannot run twice, so it is rebuilt from a factory on every
//     start.
package services
