// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelfeed/internal/models"
)

// ToggleLike adds or removes userID's like on postID and adjusts the post's
// likes_count in the same transaction. TargetID is the post author.
func (db *DB) ToggleLike(ctx context.Context, userID, postID string) (models.ToggleResult, error) {
	return db.toggleEdge(ctx, "likes", "likes_count", userID, postID)
}

// ToggleBookmark adds or removes userID's bookmark on postID and adjusts the
// post's bookmark_count in the same transaction.
func (db *DB) ToggleBookmark(ctx context.Context, userID, postID string) (models.ToggleResult, error) {
	return db.toggleEdge(ctx, "bookmarks", "bookmark_count", userID, postID)
}

// toggleEdge flips one (user, post) edge. table and counter are constants
// from this file.
func (db *DB) toggleEdge(ctx context.Context, table, counter, userID, postID string) (result models.ToggleResult, err error) {
	start := time.Now()
	defer func() { observe("toggle", table, start, err) }()

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		authorID, err := postAuthor(ctx, tx, postID)
		if err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE user_id = ? AND post_id = ?)`, //nolint:gosec // table is a constant
			userID, postID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check %s: %w", table, err)
		}

		delta := 1
		if exists {
			delta = -1
			_, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ? AND post_id = ?`, userID, postID) //nolint:gosec // table is a constant
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO `+table+` (user_id, post_id, created_at) VALUES (?, ?, ?)`, //nolint:gosec // table is a constant
				userID, postID, time.Now().UTC())
		}
		if err != nil {
			return fmt.Errorf("failed to toggle %s: %w", table, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE posts SET `+counter+` = greatest(`+counter+` + ?, 0) WHERE id = ?`, //nolint:gosec // counter is a constant
			delta, postID,
		); err != nil {
			return fmt.Errorf("failed to update %s: %w", counter, err)
		}

		result = models.ToggleResult{Active: !exists, TargetID: authorID}
		return nil
	})
	return result, err
}

// RecordView records that userID viewed postID. Only the first view per user
// increments views_count.
func (db *DB) RecordView(ctx context.Context, userID, postID string) (result models.ViewResult, err error) {
	start := time.Now()
	defer func() { observe("insert", "views", start, err) }()

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		authorID, err := postAuthor(ctx, tx, postID)
		if err != nil {
			return err
		}

		var seen bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM views WHERE user_id = ? AND post_id = ?)`, userID, postID,
		).Scan(&seen); err != nil {
			return fmt.Errorf("failed to check view: %w", err)
		}

		if !seen {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO views (user_id, post_id, created_at) VALUES (?, ?, ?)`,
				userID, postID, time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("failed to insert view: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE posts SET views_count = views_count + 1 WHERE id = ?`, postID,
			); err != nil {
				return fmt.Errorf("failed to update views count: %w", err)
			}
		}

		result = models.ViewResult{FirstView: !seen, AuthorID: authorID}
		if err := tx.QueryRowContext(ctx,
			`SELECT views_count FROM posts WHERE id = ?`, postID,
		).Scan(&result.ViewsCount); err != nil {
			return fmt.Errorf("failed to read views count: %w", err)
		}
		return nil
	})
	return result, err
}

func postAuthor(ctx context.Context, tx *sql.Tx, postID string) (string, error) {
	var authorID string
	err := tx.QueryRowContext(ctx, `SELECT author_id FROM posts WHERE id = ?`, postID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get post: %w", err)
	}
	return authorID, nil
}
