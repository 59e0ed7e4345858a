// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package testinfra starts real backing services in Docker for integration
// tests, using testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// Unit tests use miniredis instead; these tests catch behaviour miniredis
// does not model, such as real key expiry under server time.
//
//	func TestSharedLimiter(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redisC, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redisC)
//
//	    client, err := ratelimit.NewClient(ctx, &config.RedisConfig{Addr: redisC.Addr})
//	    // ...
//	}
package testinfra
