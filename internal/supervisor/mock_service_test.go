// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until canceled, failing its first failFirst starts.
type mockService struct {
	name       string
	failFirst  int32
	startCount atomic.Int32
	started    chan struct{}
}

func newMockService(name string, failFirst int32) *mockService {
	return &mockService{name: name, failFirst: failFirst, started: make(chan struct{}, 16)}
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.startCount.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}
	if n <= m.failFirst {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
