// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	EventTypeRegistered   EventType = "account.registered"
	EventTypeLoginSuccess EventType = "auth.login_success"
	EventTypeLoginFailure EventType = "auth.login_failure"
	EventTypeLogout       EventType = "auth.logout"
)

// Severity indicates the importance of an event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

var severityOrder = map[Severity]int{
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityError:    3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is at or above min. Unknown severities rank
// below info.
func (s Severity) AtLeast(min Severity) bool {
	return severityOrder[s] >= severityOrder[min]
}

// Outcome is the result of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is a single audit record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Outcome   Outcome   `json:"outcome"`

	// ActorID is the account id when known. Failed logins leave it empty
	// and carry the attempted email in ActorName.
	ActorID   string `json:"actor_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`

	Source      Source          `json:"source"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
}

// Source describes where a request came from.
type Source struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent,omitempty"`
}

// QueryFilter selects events. Zero fields match everything.
type QueryFilter struct {
	Types     []EventType `json:"types,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	ActorName string      `json:"actor_name,omitempty"`
	SourceIP  string      `json:"source_ip,omitempty"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Limit     int         `json:"limit,omitempty"`
}

// DefaultQueryLimit caps queries that do not set a limit.
const DefaultQueryLimit = 100

func (f *QueryFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultQueryLimit
	}
	return f.Limit
}

func (f *QueryFilter) matches(e *Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == e.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ActorID != "" && f.ActorID != e.ActorID {
		return false
	}
	if f.ActorName != "" && f.ActorName != e.ActorName {
		return false
	}
	if f.SourceIP != "" && f.SourceIP != e.Source.IPAddress {
		return false
	}
	if f.StartTime != nil && e.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && !e.Timestamp.Before(*f.EndTime) {
		return false
	}
	return true
}

// Store persists audit events. Query returns newest first.
type Store interface {
	Save(ctx context.Context, event *Event) error
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}
