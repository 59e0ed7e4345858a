// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
)

var _ Store = (*DuckDBStore)(nil)

// DuckDBStore implements Store on the audit_events table.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a DuckDB-backed audit store. Call CreateTable
// before the first Save.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_events table if it doesn't exist.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			outcome TEXT NOT NULL,
			actor_id TEXT,
			actor_name TEXT,
			source_ip TEXT NOT NULL,
			source_user_agent TEXT,
			description TEXT NOT NULL,
			metadata TEXT,
			request_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_actor ON audit_events(actor_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create audit table: %w", err)
		}
	}
	return nil
}

// Save inserts an event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "audit_events", time.Since(start), err) }()

	var metadata *string
	if len(event.Metadata) > 0 {
		m := string(event.Metadata)
		metadata = &m
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, timestamp, type, severity, outcome, actor_id, actor_name,
			source_ip, source_user_agent, description, metadata, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC(), string(event.Type), string(event.Severity), string(event.Outcome),
		nullIfEmpty(event.ActorID), nullIfEmpty(event.ActorName),
		event.Source.IPAddress, nullIfEmpty(event.Source.UserAgent),
		event.Description, metadata, nullIfEmpty(event.RequestID),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Query returns matching events, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) (events []Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "audit_events", time.Since(start), err) }()

	where, args := buildFilterConditions(filter)
	query := `SELECT id, timestamp, type, severity, outcome, actor_id, actor_name,
		source_ip, source_user_agent, description, metadata, request_id
		FROM audit_events` + where + ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close audit rows")
		}
	}()

	events = make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of matching events, ignoring the limit.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := buildFilterConditions(filter)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n, nil
}

// Delete removes events older than olderThan.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (n int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete", "audit_events", time.Since(start), err) }()

	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted count: %w", err)
	}
	return n, nil
}

func buildFilterConditions(filter QueryFilter) (string, []any) {
	var conditions []string
	var args []any

	if len(filter.Types) > 0 {
		ph := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			ph[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions, "type IN ("+strings.Join(ph, ",")+")")
	}
	if filter.ActorID != "" {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.ActorName != "" {
		conditions = append(conditions, "actor_name = ?")
		args = append(args, filter.ActorName)
	}
	if filter.SourceIP != "" {
		conditions = append(conditions, "source_ip = ?")
		args = append(args, filter.SourceIP)
	}
	if filter.StartTime != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartTime.UTC())
	}
	if filter.EndTime != nil {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, filter.EndTime.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var (
		e                                   Event
		typ, severity, outcome              string
		actorID, actorName, agent, metadata sql.NullString
		requestID                           sql.NullString
	)
	if err := rows.Scan(
		&e.ID, &e.Timestamp, &typ, &severity, &outcome, &actorID, &actorName,
		&e.Source.IPAddress, &agent, &e.Description, &metadata, &requestID,
	); err != nil {
		return Event{}, fmt.Errorf("failed to scan audit event: %w", err)
	}
	e.Timestamp = e.Timestamp.UTC()
	e.Type = EventType(typ)
	e.Severity = Severity(severity)
	e.Outcome = Outcome(outcome)
	e.ActorID = actorID.String
	e.ActorName = actorName.String
	e.Source.UserAgent = agent.String
	e.RequestID = requestID.String
	if metadata.Valid {
		e.Metadata = json.RawMessage(metadata.String)
	}
	return e, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
