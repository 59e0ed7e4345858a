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

	"github.com/google/uuid"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

// CreateComment inserts c and increments the post's comments_count in the
// same transaction. ID and CreatedAt are filled in when empty. It returns
// the post author, ErrNotFound for a missing post, or ErrInvalidParent.
func (db *DB) CreateComment(ctx context.Context, c *models.Comment) (postAuthorID string, err error) {
	start := time.Now()
	defer func() { observe("insert", "comments", start, err) }()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Microsecond)

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		authorID, err := postAuthor(ctx, tx, c.PostID)
		if err != nil {
			return err
		}

		if c.ParentID != nil {
			var ok bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM comments WHERE id = ? AND post_id = ?)`, *c.ParentID, c.PostID,
			).Scan(&ok); err != nil {
				return fmt.Errorf("failed to check parent comment: %w", err)
			}
			if !ok {
				return ErrInvalidParent
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO comments (id, post_id, author_id, parent_id, text, likes_count, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?)`,
			c.ID, c.PostID, c.AuthorID, nullString(c.ParentID), c.Text, c.CreatedAt,
		); err != nil {
			if isUniqueConstraintError(err) {
				return ErrConflict
			}
			return fmt.Errorf("failed to insert comment: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE posts SET comments_count = comments_count + 1 WHERE id = ?`, c.PostID,
		); err != nil {
			return fmt.Errorf("failed to update comments count: %w", err)
		}

		postAuthorID = authorID
		return nil
	})
	return postAuthorID, err
}

// CommentsByPost returns up to limit top-level comments on postID after
// before (nil means from the newest), ordered created_at DESC, id DESC.
// LikedByMe is false for an empty viewerID. Comments whose author no longer
// exists are skipped.
func (db *DB) CommentsByPost(ctx context.Context, postID, viewerID string, before *feed.Cursor, limit int) (out []models.CommentView, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			observe("select", "comments", start, nil)
			return
		}
		observe("select", "comments", start, err)
	}()

	var exists bool
	if err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)`, postID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	out = make([]models.CommentView, 0)
	if limit <= 0 {
		return out, nil
	}

	query := `SELECT c.id, c.post_id, c.parent_id, c.text, c.likes_count, c.created_at,
			a.id, a.username, a.avatar,
			EXISTS (SELECT 1 FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = ?)
		FROM comments c
		JOIN accounts a ON a.id = c.author_id
		WHERE c.post_id = ? AND c.parent_id IS NULL`
	args := []any{viewerID, postID}
	if before != nil {
		if before.ID == "" {
			query += ` AND c.created_at < ?`
			args = append(args, before.CreatedAt)
		} else {
			query += ` AND (c.created_at < ? OR (c.created_at = ? AND c.id < ?))`
			args = append(args, before.CreatedAt, before.CreatedAt, before.ID)
		}
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var (
			v      models.CommentView
			parent sql.NullString
		)
		if err := rows.Scan(
			&v.ID, &v.PostID, &parent, &v.Text, &v.LikesCount, &v.CreatedAt,
			&v.Author.ID, &v.Author.Username, &v.Author.Avatar, &v.LikedByMe,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if parent.Valid {
			v.Parent = &parent.String
		}
		if v.Author.Avatar == "" {
			v.Author.Avatar = models.DefaultAvatar
		}
		v.CreatedAt = v.CreatedAt.UTC()
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return out, nil
}

// ToggleCommentLike adds or removes userID's like on commentID and adjusts
// the comment's likes_count in the same transaction. TargetID is the
// comment author.
func (db *DB) ToggleCommentLike(ctx context.Context, userID, commentID string) (result models.ToggleResult, err error) {
	start := time.Now()
	defer func() { observe("toggle", "comment_likes", start, err) }()

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		var authorID string
		err := tx.QueryRowContext(ctx, `SELECT author_id FROM comments WHERE id = ?`, commentID).Scan(&authorID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get comment: %w", err)
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM comment_likes WHERE user_id = ? AND comment_id = ?)`, userID, commentID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check comment like: %w", err)
		}

		delta := 1
		if exists {
			delta = -1
			_, err = tx.ExecContext(ctx, `DELETE FROM comment_likes WHERE user_id = ? AND comment_id = ?`, userID, commentID)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO comment_likes (user_id, comment_id, created_at) VALUES (?, ?, ?)`,
				userID, commentID, time.Now().UTC())
		}
		if err != nil {
			return fmt.Errorf("failed to toggle comment like: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE comments SET likes_count = greatest(likes_count + ?, 0) WHERE id = ?`, delta, commentID,
		); err != nil {
			return fmt.Errorf("failed to update comment likes count: %w", err)
		}

		result = models.ToggleResult{Active: !exists, TargetID: authorID}
		return nil
	})
	return result, err
}
