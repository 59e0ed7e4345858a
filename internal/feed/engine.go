// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/models"
)

// Feed names used in logs and metrics.
const (
	FeedFollowing = "following"
	FeedForYou    = "for_you"
	FeedAuthor    = "author"
)

// ErrUnauthenticated is returned when a feed that needs a viewer gets none.
var ErrUnauthenticated = errors.New("feed requires an authenticated viewer")

// Stats is a snapshot of engine counters.
type Stats struct {
	FollowingRequests int64 `json:"following_requests"`
	ForYouRequests    int64 `json:"for_you_requests"`
	AuthorRequests    int64 `json:"author_requests"`
	Errors            int64 `json:"errors"`
}

// Engine assembles the following and for-you feeds. Every call is an
// independent read over the store; the engine keeps no per-request state and
// is safe for concurrent use.
type Engine struct {
	config    *Config
	logger    zerolog.Logger
	store     Store
	graph     *GraphReader
	annotator *Annotator
	now       func() time.Time

	followingRequests atomic.Int64
	forYouRequests    atomic.Int64
	authorRequests    atomic.Int64
	errorCount        atomic.Int64
}

// NewEngine creates an engine reading from store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(store Store, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("feed store is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "feed").Logger(),
		store:     store,
		graph:     NewGraphReader(store),
		annotator: NewAnnotator(store),
		now:       time.Now,
	}, nil
}

// Graph returns the engine's graph reader.
func (e *Engine) Graph() *GraphReader {
	return e.graph
}

// FollowingFeed returns one reverse-chronological page of posts by accounts
// viewerID follows, strictly after rawCursor when it is non-empty.
//
// An unreadable cursor admits nothing and yields an empty final page.
func (e *Engine) FollowingFeed(ctx context.Context, viewerID string, limit int, rawCursor string) (*models.FeedPage, error) {
	start := time.Now()
	e.followingRequests.Add(1)

	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	following, err := e.graph.ResolveFollowing(ctx, viewerID)
	if err != nil {
		return nil, e.fail(err)
	}
	return e.authorsPage(ctx, FeedFollowing, viewerID, following, limit, rawCursor, start)
}

// AuthorFeed pages through one account's posts, newest first, with the same
// cursor and limit rules as FollowingFeed. viewerID may be empty.
func (e *Engine) AuthorFeed(ctx context.Context, viewerID, authorID string, limit int, rawCursor string) (*models.FeedPage, error) {
	start := time.Now()
	e.authorRequests.Add(1)

	return e.authorsPage(ctx, FeedAuthor, viewerID, FollowSet{authorID: {}}, limit, rawCursor, start)
}

// authorsPage fetches limit+1 posts by authors to decide whether a next
// page exists, then joins, projects and annotates the first limit.
func (e *Engine) authorsPage(
	ctx context.Context,
	feedName, viewerID string,
	authors FollowSet,
	limit int,
	rawCursor string,
	start time.Time,
) (*models.FeedPage, error) {
	limit = e.config.pageSize(limit)
	logger := e.logger.With().Str("feed", feedName).Str("viewer_id", viewerID).Logger()

	var cursor *Cursor
	if rawCursor != "" {
		c, err := ParseCursor(rawCursor)
		if err != nil {
			logger.Debug().Str("cursor", rawCursor).Msg("unreadable cursor, returning empty page")
			return emptyPage(), nil
		}
		cursor = &c
	}
	if len(authors) == 0 {
		return emptyPage(), nil
	}

	fetched, err := e.store.PostsByAuthors(ctx, authors.IDs(), cursor, limit+1)
	if err != nil {
		return nil, e.fail(fmt.Errorf("fetch posts: %w", err))
	}

	page := fetched
	var next *string
	if len(fetched) > limit {
		page = fetched[:limit]
		s := nextCursor(&page[limit-1], &fetched[limit]).String()
		next = &s
	}

	page = filterCandidates(page, func(p *models.Post) bool {
		return authors.Has(p.AuthorID) && (cursor == nil || cursor.Admits(p))
	})

	views, err := e.joinAndProject(ctx, page, nil)
	if err != nil {
		return nil, e.fail(err)
	}
	if err := e.annotator.Annotate(ctx, views, viewerID); err != nil {
		return nil, e.fail(err)
	}

	metrics.RecordFeedBuild(feedName, time.Since(start), len(views))
	logger.Debug().
		Int("authors", len(authors)).
		Int("returned", len(views)).
		Bool("has_next", next != nil).
		Dur("took", time.Since(start)).
		Msg("page assembled")

	return &models.FeedPage{Posts: views, NextCursor: next}, nil
}

// ForYouFeed scores every candidate post for viewerID and returns the top
// ForYouSize. An empty viewerID is an anonymous read: no following boost and
// all interaction flags false.
func (e *Engine) ForYouFeed(ctx context.Context, viewerID string) (*models.ForYouPage, error) {
	start := time.Now()
	e.forYouRequests.Add(1)

	following, err := e.graph.ResolveFollowing(ctx, viewerID)
	if err != nil {
		return nil, e.fail(err)
	}

	posts, err := e.store.CandidatePosts(ctx, e.config.MaxCandidates)
	if err != nil {
		return nil, e.fail(fmt.Errorf("fetch candidates: %w", err))
	}

	now := e.now()
	views, err := e.joinAndProject(ctx, posts, func(cands []candidate) []candidate {
		cands = scoreCandidates(cands, following, now, e.config.Weights)
		cands = sortByScore(cands)
		return limitCandidates(cands, e.config.ForYouSize)
	})
	if err != nil {
		return nil, e.fail(err)
	}
	if err := e.annotator.Annotate(ctx, views, viewerID); err != nil {
		return nil, e.fail(err)
	}

	metrics.FeedCandidates.Observe(float64(len(posts)))
	metrics.RecordFeedBuild(FeedForYou, time.Since(start), len(views))
	e.logger.Debug().
		Str("feed", FeedForYou).
		Bool("anonymous", viewerID == "").
		Int("candidates", len(posts)).
		Int("returned", len(views)).
		Dur("took", time.Since(start)).
		Msg("for-you feed assembled")

	return &models.ForYouPage{Posts: views}, nil
}

// joinAndProject runs join, the optional rank stages, then project.
func (e *Engine) joinAndProject(ctx context.Context, posts []models.Post, rank func([]candidate) []candidate) ([]models.PostView, error) {
	if len(posts) == 0 {
		return []models.PostView{}, nil
	}

	accounts, err := e.store.AccountsByID(ctx, authorIDs(posts))
	if err != nil {
		return nil, fmt.Errorf("fetch authors: %w", err)
	}

	cands := joinAuthors(posts, accounts)
	if rank != nil {
		cands = rank(cands)
	}
	return projectCandidates(cands), nil
}

func (e *Engine) fail(err error) error {
	e.errorCount.Add(1)
	return err
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		FollowingRequests: e.followingRequests.Load(),
		ForYouRequests:    e.forYouRequests.Load(),
		AuthorRequests:    e.authorRequests.Load(),
		Errors:            e.errorCount.Load(),
	}
}

func emptyPage() *models.FeedPage {
	return &models.FeedPage{Posts: []models.PostView{}}
}
