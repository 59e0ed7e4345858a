// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

var _ feed.Store = (*DB)(nil)

// FollowingIDs returns the ids of accounts viewerID follows.
func (db *DB) FollowingIDs(ctx context.Context, viewerID string) (ids []string, err error) {
	start := time.Now()
	defer func() { observe("select", "follows", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT following_id FROM follows WHERE follower_id = ?`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follows: %w", err)
	}
	defer closeRows(rows)

	ids = make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}
	return ids, nil
}

// PostsByAuthors returns up to limit posts by authorIDs strictly after before
// (when non-nil), ordered by created_at DESC, id DESC.
func (db *DB) PostsByAuthors(ctx context.Context, authorIDs []string, before *feed.Cursor, limit int) (posts []models.Post, err error) {
	if len(authorIDs) == 0 || limit <= 0 {
		return []models.Post{}, nil
	}

	start := time.Now()
	defer func() { observe("select", "posts", start, err) }()

	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id IN (` + placeholders(len(authorIDs)) + `)`
	args := stringArgs(authorIDs)

	if before != nil {
		if before.ID == "" {
			query += ` AND created_at < ?`
			args = append(args, before.CreatedAt)
		} else {
			query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
			args = append(args, before.CreatedAt, before.CreatedAt, before.ID)
		}
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts by authors: %w", err)
	}
	defer closeRows(rows)

	return scanPosts(rows)
}

// CandidatePosts returns the limit most recent posts, or every post when
// limit is zero, ordered by created_at DESC, id DESC.
func (db *DB) CandidatePosts(ctx context.Context, limit int) (posts []models.Post, err error) {
	start := time.Now()
	defer func() { observe("select", "posts", start, err) }()

	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate posts: %w", err)
	}
	defer closeRows(rows)

	return scanPosts(rows)
}

// AccountsByID returns the accounts among ids that exist, keyed by id.
func (db *DB) AccountsByID(ctx context.Context, ids []string) (accounts map[string]models.Account, err error) {
	accounts = make(map[string]models.Account, len(ids))
	if len(ids) == 0 {
		return accounts, nil
	}

	start := time.Now()
	defer func() { observe("select", "accounts", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts[a.ID] = *a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// interactionTables maps an interaction kind to its edge table.
var interactionTables = map[models.InteractionKind]string{
	models.InteractionLike:     "likes",
	models.InteractionBookmark: "bookmarks",
	models.InteractionView:     "views",
}

// InteractedPostIDs returns the subset of postIDs that viewerID has an edge
// of kind to.
func (db *DB) InteractedPostIDs(ctx context.Context, kind models.InteractionKind, viewerID string, postIDs []string) (set map[string]bool, err error) {
	table, ok := interactionTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown interaction kind %q", kind)
	}
	set = make(map[string]bool)
	if viewerID == "" || len(postIDs) == 0 {
		return set, nil
	}

	start := time.Now()
	defer func() { observe("select", table, start, err) }()

	args := append([]any{viewerID}, stringArgs(postIDs)...)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_id FROM `+table+` WHERE user_id = ? AND post_id IN (`+placeholders(len(postIDs))+`)`, //nolint:gosec // table is a constant
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}
	return set, nil
}
