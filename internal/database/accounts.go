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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelfeed/internal/models"
)

const accountColumns = `id, email, username, password_hash, role, avatar, bio,
	followers_count, following_count, likes_count, created_at`

// CreateAccount inserts a new account. ID, Role and CreatedAt are filled in
// when empty. Returns ErrConflict when the email or username is taken.
func (db *DB) CreateAccount(ctx context.Context, acct *models.Account) (err error) {
	start := time.Now()
	defer func() { observe("insert", "accounts", start, err) }()

	if acct.ID == "" {
		acct.ID = uuid.New().String()
	}
	if acct.Role == "" {
		acct.Role = models.RoleMember
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now()
	}
	acct.CreatedAt = acct.CreatedAt.UTC().Truncate(time.Microsecond)

	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.conn.ExecContext(ctx, query,
		acct.ID, acct.Email, acct.Username, acct.PasswordHash, acct.Role, acct.Avatar, acct.Bio,
		acct.FollowersCount, acct.FollowingCount, acct.LikesCount, acct.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// AccountByID returns the account with id, or ErrNotFound.
func (db *DB) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	return db.accountWhere(ctx, "id", id)
}

// AccountByEmail returns the account registered with email, or ErrNotFound.
func (db *DB) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return db.accountWhere(ctx, "email", email)
}

// AccountByUsername returns the account with username, or ErrNotFound.
func (db *DB) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	return db.accountWhere(ctx, "username", username)
}

// accountWhere looks up one account by a unique column. column is always a
// constant from this file.
func (db *DB) accountWhere(ctx context.Context, column, value string) (acct *models.Account, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			observe("select", "accounts", start, nil)
			return
		}
		observe("select", "accounts", start, err)
	}()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = ?` //nolint:gosec // column is a constant
	row := db.conn.QueryRowContext(ctx, query, value)

	acct, err = scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Role, &a.Avatar, &a.Bio,
		&a.FollowersCount, &a.FollowingCount, &a.LikesCount, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

// ToggleFollow creates the follow edge from followerID to the account named
// targetUsername, or removes it if present, and adjusts both accounts'
// counters in the same transaction.
func (db *DB) ToggleFollow(ctx context.Context, followerID, targetUsername string) (result models.ToggleResult, err error) {
	start := time.Now()
	defer func() { observe("toggle", "follows", start, err) }()

	target, err := db.AccountByUsername(ctx, targetUsername)
	if err != nil {
		return result, err
	}
	if target.ID == followerID {
		return result, ErrSelfFollow
	}
	result.TargetID = target.ID

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
			followerID, target.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check follow: %w", err)
		}

		delta := 1
		if exists {
			delta = -1
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`, followerID, target.ID,
			); err != nil {
				return fmt.Errorf("failed to delete follow: %w", err)
			}
		} else {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
				followerID, target.ID, time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("failed to insert follow: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET following_count = greatest(following_count + ?, 0) WHERE id = ?`, delta, followerID,
		); err != nil {
			return fmt.Errorf("failed to update following count: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET followers_count = greatest(followers_count + ?, 0) WHERE id = ?`, delta, target.ID,
		); err != nil {
			return fmt.Errorf("failed to update followers count: %w", err)
		}

		result.Active = !exists
		return nil
	})
	return result, err
}

// FollowedAccounts lists accounts viewerID follows, most recently followed
// first. A non-empty search keeps usernames containing it, case-insensitively.
func (db *DB) FollowedAccounts(ctx context.Context, viewerID, search string, limit int) (out []models.FollowedAccount, err error) {
	start := time.Now()
	defer func() { observe("select", "follows", start, err) }()

	query := `SELECT a.id, a.username, a.avatar
		FROM follows f
		JOIN accounts a ON a.id = f.following_id
		WHERE f.follower_id = ?`
	args := []any{viewerID}
	if search != "" {
		query += ` AND a.username ILIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	query += ` ORDER BY f.created_at DESC, a.username ASC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list followed accounts: %w", err)
	}
	defer closeRows(rows)

	out = make([]models.FollowedAccount, 0)
	for rows.Next() {
		var fa models.FollowedAccount
		if err := rows.Scan(&fa.ID, &fa.Username, &fa.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan followed account: %w", err)
		}
		if fa.Avatar == "" {
			fa.Avatar = models.DefaultAvatar
		}
		out = append(out, fa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating followed accounts: %w", err)
	}
	return out, nil
}

// IsFollowing reports whether a follow edge from followerID to followingID
// exists.
func (db *DB) IsFollowing(ctx context.Context, followerID, followingID string) (following bool, err error) {
	start := time.Now()
	defer func() { observe("select", "follows", start, err) }()

	if err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
		followerID, followingID,
	).Scan(&following); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return following, nil
}

// SuggestedAccounts ranks accounts viewerID neither is nor follows. An
// account scores 10 when it follows the viewer, plus one for every account
// the viewer follows that it also follows. Ties go to the most recent
// poster, then to accounts that never posted, newest first.
func (db *DB) SuggestedAccounts(ctx context.Context, viewerID string, limit int) (out []models.SuggestedAccount, err error) {
	start := time.Now()
	defer func() { observe("select", "accounts", start, err) }()

	out = make([]models.SuggestedAccount, 0)
	if limit <= 0 {
		return out, nil
	}

	rows, err := db.conn.QueryContext(ctx, `
		WITH mine AS (
			SELECT following_id FROM follows WHERE follower_id = ?
		), candidates AS (
			SELECT a.id, a.username, a.avatar, a.created_at,
				EXISTS (SELECT 1 FROM follows b WHERE b.follower_id = a.id AND b.following_id = ?) AS follows_back,
				(SELECT COUNT(*) FROM follows f
					WHERE f.follower_id = a.id AND f.following_id IN (SELECT following_id FROM mine)) AS common,
				(SELECT max(p.created_at) FROM posts p WHERE p.author_id = a.id) AS last_post
			FROM accounts a
			WHERE a.id <> ? AND a.id NOT IN (SELECT following_id FROM mine)
		)
		SELECT id, username, avatar, follows_back, common, last_post
		FROM candidates
		ORDER BY (CASE WHEN follows_back THEN 10 ELSE 0 END) + common DESC,
			last_post DESC NULLS LAST, created_at DESC, id ASC
		LIMIT ?`,
		viewerID, viewerID, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggested accounts: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var (
			s           models.SuggestedAccount
			followsBack bool
			common      int64
			lastPost    sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Username, &s.Avatar, &followsBack, &common, &lastPost); err != nil {
			return nil, fmt.Errorf("failed to scan suggested account: %w", err)
		}
		switch {
		case followsBack:
			s.Reason = models.SuggestFollowsYou
		case common > 0:
			s.Reason = models.SuggestCommonFollows
		case lastPost.Valid:
			s.Reason = models.SuggestRecentlyActive
		default:
			s.Reason = models.SuggestNew
		}
		if s.Avatar == "" {
			s.Avatar = models.DefaultAvatar
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggested accounts: %w", err)
	}
	return out, nil
}

// ApplyLikeDelta adds delta to the account's received-like counter once per
// eventID. It reports false without changing anything when the event was
// already applied. The counter never drops below zero.
func (db *DB) ApplyLikeDelta(ctx context.Context, eventID, kind, accountID string, delta int) (applied bool, err error) {
	start := time.Now()
	defer func() { observe("update", "accounts", start, err) }()

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		var seen bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = ?)`, eventID,
		).Scan(&seen); err != nil {
			return fmt.Errorf("failed to check processed event: %w", err)
		}
		if seen {
			applied = false
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO processed_events (event_id, kind, processed_at) VALUES (?, ?, ?)`,
			eventID, kind, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("failed to record processed event: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE accounts SET likes_count = greatest(likes_count + ?, 0) WHERE id = ?`, delta, accountID,
		)
		if err != nil {
			return fmt.Errorf("failed to update likes count: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		applied = n > 0
		return nil
	})
	return applied, err
}

// escapeLike escapes LIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
