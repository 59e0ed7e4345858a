// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
database_schema.go - Database Schema Management

Tables:
  - accounts: registered users with denormalized follower, following and
    received-like counters
  - posts: short videos and images with denormalized engagement counters
  - follows: directed follow edges, one per ordered pair
  - likes, bookmarks, views: (user, post) interaction edges, one per pair
  - comments: post comments; parent_id links a reply to a comment on the
    same post
  - comment_likes: (user, comment) like edges, one per pair
  - processed_events: ids of interaction events already applied by consumers

Timestamps are stored as UTC TIMESTAMP with microsecond precision.

Index Strategy:
  - posts(created_at, id) serves the for-you candidate scan and the global
    (created_at DESC, id DESC) order
  - posts(author_id, created_at) serves the following feed
  - follows(following_id) serves follower lookups; the primary key covers
    follower_id
  - comments(post_id, created_at) serves the newest-first comment list
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'member',
			avatar TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			followers_count BIGINT NOT NULL DEFAULT 0,
			following_count BIGINT NOT NULL DEFAULT 0,
			likes_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			media_url TEXT NOT NULL,
			thumbnail_url TEXT,
			caption TEXT,
			duration DOUBLE,
			views_count BIGINT NOT NULL DEFAULT 0,
			likes_count BIGINT NOT NULL DEFAULT 0,
			comments_count BIGINT NOT NULL DEFAULT 0,
			bookmark_count BIGINT NOT NULL DEFAULT 0,
			shares_count BIGINT NOT NULL DEFAULT 0,
			is_private BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL,
			following_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (follower_id, following_id)
		)`,

		`CREATE TABLE IF NOT EXISTS likes (
			user_id TEXT NOT NULL,
			post_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, post_id)
		)`,

		`CREATE TABLE IF NOT EXISTS bookmarks (
			user_id TEXT NOT NULL,
			post_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, post_id)
		)`,

		`CREATE TABLE IF NOT EXISTS views (
			user_id TEXT NOT NULL,
			post_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, post_id)
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			parent_id TEXT,
			text TEXT NOT NULL,
			likes_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS comment_likes (
			user_id TEXT NOT NULL,
			comment_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, comment_id)
		)`,

		`CREATE TABLE IF NOT EXISTS processed_events (
			event_id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			processed_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates secondary indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts(author_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_following ON follows(following_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at)`,
	}
	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
