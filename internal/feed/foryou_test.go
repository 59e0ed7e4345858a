// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/models"
)

func seedForYou(n int) *mockStore {
	store := newMockStore()
	for i := 0; i < 5; i++ {
		store.addAccount(fmt.Sprintf("u%d", i))
	}
	for i := 0; i < n; i++ {
		store.addPost(models.Post{
			ID:            fmt.Sprintf("p%03d", i),
			AuthorID:      fmt.Sprintf("u%d", i%5),
			CreatedAt:     at(float64(i % 48)),
			LikesCount:    int64((i * 7) % 13),
			CommentsCount: int64((i * 3) % 5),
			ViewsCount:    int64((i * 11) % 29),
		})
	}
	return store
}

func TestForYouFeedSizeAndOrder(t *testing.T) {
	t.Parallel()

	store := seedForYou(90)
	store.follow("viewer", "u2")
	e := newTestEngine(t, store)

	page, err := e.ForYouFeed(context.Background(), "viewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Posts) != 20 {
		t.Fatalf("expected 20 posts, got %d", len(page.Posts))
	}

	following := FollowSet{"u2": {}}
	byID := make(map[string]models.Post)
	for _, p := range store.posts {
		byID[p.ID] = p
	}
	prev := 0.0
	for i, v := range page.Posts {
		p := byID[v.ID]
		score := scorePost(&p, following.Has(p.AuthorID), e.now(), e.config.Weights)
		if i > 0 && score > prev {
			t.Errorf("post %d (%s) scores %f above previous %f", i, v.ID, score, prev)
		}
		prev = score
	}
}

func TestForYouFeedFewerThanPageSize(t *testing.T) {
	t.Parallel()

	store := seedForYou(7)
	e := newTestEngine(t, store)

	page, err := e.ForYouFeed(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Posts) != 7 {
		t.Errorf("expected all 7 posts, got %d", len(page.Posts))
	}
}

func TestForYouFeedEmptyStore(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newMockStore())
	page, err := e.ForYouFeed(context.Background(), "viewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Posts == nil || len(page.Posts) != 0 {
		t.Errorf("expected empty non-nil posts, got %#v", page.Posts)
	}
}

func TestForYouFeedAnonymous(t *testing.T) {
	t.Parallel()

	store := seedForYou(30)
	store.likes["someone"] = make(map[string]bool)
	for _, p := range store.posts {
		store.likes["someone"][p.ID] = true
	}
	e := newTestEngine(t, store)

	page, err := e.ForYouFeed(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range page.Posts {
		if p.LikedByMe || p.BookmarkedByMe {
			t.Errorf("anonymous view of %s has flags set", p.ID)
		}
	}
	if n := store.interactionCalls.Load(); n != 0 {
		t.Errorf("expected no interaction lookups for anonymous viewer, got %d", n)
	}
}

func TestForYouFeedFollowingBoost(t *testing.T) {
	t.Parallel()

	// Two otherwise identical posts; the followed author's post must outrank
	// the other by exactly the boost.
	store := newMockStore()
	store.addAccount("followed")
	store.addAccount("other")
	store.follow("viewer", "followed")
	store.addPost(models.Post{ID: "a", AuthorID: "other", CreatedAt: at(90), LikesCount: 5})
	store.addPost(models.Post{ID: "b", AuthorID: "followed", CreatedAt: at(90), LikesCount: 5})
	e := newTestEngine(t, store)

	page, err := e.ForYouFeed(context.Background(), "viewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := postIDs(page.Posts); !equalIDs(got, []string{"b", "a"}) {
		t.Fatalf("got order %v, want [b a]", got)
	}

	now := e.now()
	w := e.config.Weights
	followed := scorePost(&store.posts[1], true, now, w)
	unfollowed := scorePost(&store.posts[1], false, now, w)
	if diff := followed - unfollowed; diff != w.FollowingBoost {
		t.Errorf("boost = %f, want %f", diff, w.FollowingBoost)
	}
}

func TestForYouFeedLikeMonotonicity(t *testing.T) {
	t.Parallel()

	now := at(100)
	w := DefaultWeights()
	p := models.Post{ID: "p", CreatedAt: at(50), LikesCount: 10, CommentsCount: 2, ViewsCount: 40}
	base := scorePost(&p, false, now, w)
	for likes := int64(11); likes < 20; likes++ {
		p.LikesCount = likes
		if s := scorePost(&p, false, now, w); s <= base {
			t.Fatalf("score did not increase at %d likes: %f <= %f", likes, s, base)
		} else {
			base = s
		}
	}
}

func TestForYouFeedAnnotatesViewer(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addAccount("u")
	store.addPost(models.Post{ID: "x", AuthorID: "u", CreatedAt: at(99), LikesCount: 100})
	store.addPost(models.Post{ID: "y", AuthorID: "u", CreatedAt: at(99)})
	store.likes["viewer"] = map[string]bool{"x": true}
	store.bookmarks["viewer"] = map[string]bool{"x": true, "y": true}
	e := newTestEngine(t, store)

	page, err := e.ForYouFeed(context.Background(), "viewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flags := make(map[string][2]bool)
	for _, p := range page.Posts {
		flags[p.ID] = [2]bool{p.LikedByMe, p.BookmarkedByMe}
	}
	if flags["x"] != [2]bool{true, true} {
		t.Errorf("x flags = %v", flags["x"])
	}
	if flags["y"] != [2]bool{false, true} {
		t.Errorf("y flags = %v", flags["y"])
	}
}

func TestForYouFeedCandidateCap(t *testing.T) {
	t.Parallel()

	store := seedForYou(40)
	cfg := DefaultConfig()
	cfg.MaxCandidates = 25
	e, err := NewEngine(store, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if _, err := e.ForYouFeed(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.candidateLimit.Load(); got != 25 {
		t.Errorf("candidate limit = %d, want 25", got)
	}
}

func TestForYouFeedDefaultScoresEveryPost(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addAccount("old")
	store.addAccount("new")
	store.addPost(models.Post{ID: "viral", AuthorID: "old", CreatedAt: at(-900), LikesCount: 1_000_000})
	for i := 0; i < 5000; i++ {
		store.addPost(models.Post{
			ID:        fmt.Sprintf("fresh%04d", i),
			AuthorID:  "new",
			CreatedAt: at(99 - float64(i)/100),
		})
	}
	e := newTestEngine(t, store)

	page, err := e.ForYouFeed(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.candidateLimit.Load(); got != 0 {
		t.Errorf("candidate limit = %d, want 0", got)
	}
	if len(page.Posts) != 20 || page.Posts[0].ID != "viral" {
		t.Fatalf("expected viral post first in a full page, got %v", postIDs(page.Posts))
	}
}

func TestForYouFeedStoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk gone")
	store := seedForYou(5)
	store.postsErr = boom
	e := newTestEngine(t, store)

	if _, err := e.ForYouFeed(context.Background(), "viewer"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if s := e.Stats(); s.ForYouRequests != 1 || s.Errors != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}
