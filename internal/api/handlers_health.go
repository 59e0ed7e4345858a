// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status        string  `json:"status"`
	Database      bool    `json:"database"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Health reports liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:        "healthy",
		Database:      true,
		UptimeSeconds: time.Since(h.started).Seconds(),
	}
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Database = false
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, status)
}
