// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package middleware provides HTTP middleware shared by every route.

  - RequestID: accepts or generates X-Request-ID and tags request logs with it
  - PrometheusMetrics: request counts, latency and in-flight gauge, labelled
    by chi route pattern so path parameters do not explode cardinality

Both use the http.HandlerFunc shape; the api package adapts them for chi.
Authentication lives in internal/auth and rate limiting in the api router.
*/
package middleware
