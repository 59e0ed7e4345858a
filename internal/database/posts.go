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

	"github.com/tomtom215/reelfeed/internal/models"
)

const postColumns = `id, author_id, kind, media_url, thumbnail_url, caption, duration,
	views_count, likes_count, comments_count, bookmark_count, shares_count, is_private, created_at`

// CreatePost inserts a new post. ID and CreatedAt are filled in when empty;
// CreatedAt is stored at microsecond precision.
func (db *DB) CreatePost(ctx context.Context, post *models.Post) (err error) {
	start := time.Now()
	defer func() { observe("insert", "posts", start, err) }()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.CreatedAt = post.CreatedAt.UTC().Truncate(time.Microsecond)

	query := `INSERT INTO posts (` + postColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.conn.ExecContext(ctx, query,
		post.ID, post.AuthorID, string(post.Kind), post.MediaURL,
		nullString(post.ThumbnailURL), nullString(post.Caption), nullFloat(post.Duration),
		post.ViewsCount, post.LikesCount, post.CommentsCount, post.BookmarkCount, post.SharesCount,
		post.IsPrivate, post.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// PostByID returns the post with id, or ErrNotFound.
func (db *DB) PostByID(ctx context.Context, id string) (*models.Post, error) {
	start := time.Now()

	row := db.conn.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "posts", start, nil)
		return nil, ErrNotFound
	}
	observe("select", "posts", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p        models.Post
		kind     string
		thumb    sql.NullString
		caption  sql.NullString
		duration sql.NullFloat64
	)
	if err := row.Scan(
		&p.ID, &p.AuthorID, &kind, &p.MediaURL, &thumb, &caption, &duration,
		&p.ViewsCount, &p.LikesCount, &p.CommentsCount, &p.BookmarkCount, &p.SharesCount,
		&p.IsPrivate, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.Kind = models.PostKind(kind)
	if thumb.Valid {
		p.ThumbnailURL = &thumb.String
	}
	if caption.Valid {
		p.Caption = &caption.String
	}
	if duration.Valid {
		p.Duration = &duration.Float64
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
