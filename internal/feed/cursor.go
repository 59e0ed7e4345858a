// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/reelfeed/internal/models"
)

// cursorSep joins the timestamp and id of a tie-breaking cursor.
const cursorSep = "~"

// ErrMalformedCursor is returned by ParseCursor for an unreadable token.
var ErrMalformedCursor = errors.New("malformed cursor")

// Cursor is the exclusive position after the last item of a following-feed
// page. Feed order is (CreatedAt DESC, ID DESC).
//
// A cursor without ID admits every post strictly older than CreatedAt. A
// cursor with ID also admits posts sharing CreatedAt whose ID sorts below it,
// which is only needed when a page boundary falls inside a run of equal
// timestamps.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ParseCursor reads "<RFC3339 timestamp>" or "<RFC3339 timestamp>~<id>".
func ParseCursor(raw string) (Cursor, error) {
	ts, id, _ := strings.Cut(raw, cursorSep)
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, ErrMalformedCursor
	}
	return Cursor{CreatedAt: t.UTC(), ID: id}, nil
}

// String encodes the cursor for the nextCursor field.
func (c Cursor) String() string {
	ts := c.CreatedAt.UTC().Format(time.RFC3339Nano)
	if c.ID == "" {
		return ts
	}
	return ts + cursorSep + c.ID
}

// Admits reports whether p lies strictly after the cursor in feed order.
func (c Cursor) Admits(p *models.Post) bool {
	if p.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return c.ID != "" && p.CreatedAt.Equal(c.CreatedAt) && p.ID < c.ID
}

// nextCursor derives the cursor following last, given the first item of the
// next page. The id is only attached when the two share a timestamp.
func nextCursor(last, next *models.Post) Cursor {
	c := Cursor{CreatedAt: last.CreatedAt}
	if next.CreatedAt.Equal(last.CreatedAt) {
		c.ID = last.ID
	}
	return c
}
