// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

func TestToggleLike(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	author := mustCreateAccount(t, db, "author")
	fan := mustCreateAccount(t, db, "fan")
	mustCreatePost(t, db, "p1", author.ID, hoursAfterEpoch(1))

	res, err := db.ToggleLike(ctx, fan.ID, "p1")
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !res.Active || res.TargetID != author.ID {
		t.Errorf("first toggle = %+v, want active targeting author", res)
	}
	assertPostCounter(t, db, "p1", func(p *models.Post) int64 { return p.LikesCount }, 1)

	liked, err := db.InteractedPostIDs(ctx, models.InteractionLike, fan.ID, []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("InteractedPostIDs: %v", err)
	}
	if !liked["p1"] || liked["p2"] {
		t.Errorf("InteractedPostIDs() = %v", liked)
	}

	res, err = db.ToggleLike(ctx, fan.ID, "p1")
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if res.Active {
		t.Error("second toggle should unlike")
	}
	assertPostCounter(t, db, "p1", func(p *models.Post) int64 { return p.LikesCount }, 0)

	if _, err := db.ToggleLike(ctx, fan.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleBookmark(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	author := mustCreateAccount(t, db, "author")
	mustCreatePost(t, db, "p1", author.ID, hoursAfterEpoch(1))

	res, err := db.ToggleBookmark(ctx, author.ID, "p1")
	if err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if !res.Active {
		t.Error("expected bookmark to be active")
	}
	assertPostCounter(t, db, "p1", func(p *models.Post) int64 { return p.BookmarkCount }, 1)

	set, err := db.InteractedPostIDs(ctx, models.InteractionBookmark, author.ID, []string{"p1"})
	if err != nil || !set["p1"] {
		t.Errorf("bookmark not visible: %v, %v", set, err)
	}
}

func TestRecordViewIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	author := mustCreateAccount(t, db, "author")
	v1 := mustCreateAccount(t, db, "viewer1")
	v2 := mustCreateAccount(t, db, "viewer2")
	mustCreatePost(t, db, "p1", author.ID, hoursAfterEpoch(1))

	steps := []struct {
		viewer    string
		want      int64
		wantFirst bool
	}{
		{v1.ID, 1, true},
		{v1.ID, 1, false},
		{v2.ID, 2, true},
		{v1.ID, 2, false},
	}
	for i, s := range steps {
		got, err := db.RecordView(ctx, s.viewer, "p1")
		if err != nil {
			t.Fatalf("step %d: RecordView: %v", i, err)
		}
		if got.ViewsCount != s.want || got.FirstView != s.wantFirst {
			t.Errorf("step %d: got %+v, want views %d first %v", i, got, s.want, s.wantFirst)
		}
		if got.AuthorID != author.ID {
			t.Errorf("step %d: AuthorID = %q, want %q", i, got.AuthorID, author.ID)
		}
	}

	if _, err := db.RecordView(ctx, v1.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleFollow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := mustCreateAccount(t, db, "alice")
	bob := mustCreateAccount(t, db, "bob")

	mustFollow(t, db, alice, bob)

	ids, err := db.FollowingIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FollowingIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != bob.ID {
		t.Errorf("FollowingIDs() = %v", ids)
	}

	a, _ := db.AccountByID(ctx, alice.ID)
	b, _ := db.AccountByID(ctx, bob.ID)
	if a.FollowingCount != 1 || b.FollowersCount != 1 {
		t.Errorf("counters = following %d, followers %d", a.FollowingCount, b.FollowersCount)
	}

	res, err := db.ToggleFollow(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("ToggleFollow: %v", err)
	}
	if res.Active {
		t.Error("second toggle should unfollow")
	}
	b, _ = db.AccountByID(ctx, bob.ID)
	if b.FollowersCount != 0 {
		t.Errorf("followers = %d after unfollow", b.FollowersCount)
	}

	tests := []struct {
		name    string
		target  string
		wantErr error
	}{
		{"self follow", "alice", ErrSelfFollow},
		{"unknown user", "nobody", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.ToggleFollow(ctx, alice.ID, tt.target); !errors.Is(err, tt.wantErr) {
				t.Errorf("ToggleFollow() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFollowedAccounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	viewer := mustCreateAccount(t, db, "viewer")
	for _, name := range []string{"dancer_one", "dancer_two", "chef"} {
		mustFollow(t, db, viewer, mustCreateAccount(t, db, name))
	}

	all, err := db.FollowedAccounts(ctx, viewer.ID, "", 20)
	if err != nil {
		t.Fatalf("FollowedAccounts: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(all))
	}
	for _, fa := range all {
		if fa.Avatar != models.DefaultAvatar {
			t.Errorf("%s avatar = %q, want default", fa.Username, fa.Avatar)
		}
	}

	dancers, err := db.FollowedAccounts(ctx, viewer.ID, "DANCER", 20)
	if err != nil {
		t.Fatalf("FollowedAccounts: %v", err)
	}
	if len(dancers) != 2 {
		t.Errorf("search matched %d accounts, want 2", len(dancers))
	}

	literal, err := db.FollowedAccounts(ctx, viewer.ID, "r_o", 20)
	if err != nil {
		t.Fatalf("FollowedAccounts: %v", err)
	}
	if len(literal) != 1 || literal[0].Username != "dancer_one" {
		t.Errorf("underscore should match literally, got %+v", literal)
	}

	one, err := db.FollowedAccounts(ctx, viewer.ID, "", 1)
	if err != nil || len(one) != 1 {
		t.Errorf("limit not applied: %v, %v", one, err)
	}
}

func TestIsFollowing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := mustCreateAccount(t, db, "alice")
	bob := mustCreateAccount(t, db, "bob")
	mustFollow(t, db, alice, bob)

	tests := []struct {
		follower, following string
		want                bool
	}{
		{alice.ID, bob.ID, true},
		{bob.ID, alice.ID, false},
		{alice.ID, alice.ID, false},
		{"", bob.ID, false},
	}
	for _, tt := range tests {
		got, err := db.IsFollowing(ctx, tt.follower, tt.following)
		if err != nil {
			t.Fatalf("IsFollowing: %v", err)
		}
		if got != tt.want {
			t.Errorf("IsFollowing(%q, %q) = %v, want %v", tt.follower, tt.following, got, tt.want)
		}
	}
}

func TestSuggestedAccounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	viewer := mustCreateAccount(t, db, "viewer")
	followed := mustCreateAccount(t, db, "followed")
	fan := mustCreateAccount(t, db, "fan")
	cofollower := mustCreateAccount(t, db, "cofollower")
	poster := mustCreateAccount(t, db, "poster")
	newcomer := mustCreateAccount(t, db, "newcomer")

	mustFollow(t, db, viewer, followed)
	mustFollow(t, db, fan, viewer)
	mustFollow(t, db, cofollower, followed)
	mustCreatePost(t, db, "p1", poster.ID, hoursAfterEpoch(1))
	mustCreatePost(t, db, "p2", followed.ID, hoursAfterEpoch(2))

	got, err := db.SuggestedAccounts(ctx, viewer.ID, 10)
	if err != nil {
		t.Fatalf("SuggestedAccounts: %v", err)
	}

	want := []struct{ id, reason string }{
		{fan.ID, models.SuggestFollowsYou},
		{cofollower.ID, models.SuggestCommonFollows},
		{poster.ID, models.SuggestRecentlyActive},
		{newcomer.ID, models.SuggestNew},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d suggestions, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Reason != w.reason {
			t.Errorf("suggestion %d = %s/%s, want %s/%s", i, got[i].Username, got[i].Reason, w.id, w.reason)
		}
		if got[i].Avatar != models.DefaultAvatar {
			t.Errorf("%s avatar = %q, want default", got[i].Username, got[i].Avatar)
		}
	}

	top, err := db.SuggestedAccounts(ctx, viewer.ID, 1)
	if err != nil || len(top) != 1 || top[0].ID != fan.ID {
		t.Errorf("limit 1 = %+v, %v", top, err)
	}
	none, err := db.SuggestedAccounts(ctx, viewer.ID, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("limit 0 = %+v, %v", none, err)
	}
}

func TestApplyLikeDeltaIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	author := mustCreateAccount(t, db, "author")

	steps := []struct {
		eventID     string
		delta       int
		wantApplied bool
		wantLikes   int64
	}{
		{"evt-1", 1, true, 1},
		{"evt-1", 1, false, 1},
		{"evt-2", 1, true, 2},
		{"evt-3", -1, true, 1},
		{"evt-4", -1, true, 0},
		{"evt-5", -1, true, 0},
	}
	for _, s := range steps {
		applied, err := db.ApplyLikeDelta(ctx, s.eventID, "like", author.ID, s.delta)
		if err != nil {
			t.Fatalf("%s: ApplyLikeDelta: %v", s.eventID, err)
		}
		if applied != s.wantApplied {
			t.Errorf("%s: applied = %v, want %v", s.eventID, applied, s.wantApplied)
		}
		acct, err := db.AccountByID(ctx, author.ID)
		if err != nil {
			t.Fatalf("AccountByID: %v", err)
		}
		if acct.LikesCount != s.wantLikes {
			t.Errorf("%s: likes = %d, want %d", s.eventID, acct.LikesCount, s.wantLikes)
		}
	}

	applied, err := db.ApplyLikeDelta(ctx, "evt-ghost", "like", "ghost", 1)
	if err != nil || applied {
		t.Errorf("missing account: applied = %v, err = %v", applied, err)
	}
}

// TestFeedEngineOverDuckDB runs the feed engine against the real store.
func TestFeedEngineOverDuckDB(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	viewer := mustCreateAccount(t, db, "viewer")
	b := mustCreateAccount(t, db, "bee")
	c := mustCreateAccount(t, db, "cee")
	d := mustCreateAccount(t, db, "dee")
	mustFollow(t, db, viewer, b)
	mustFollow(t, db, viewer, c)
	mustCreatePost(t, db, "b10", b.ID, hoursAfterEpoch(10))
	mustCreatePost(t, db, "b5", b.ID, hoursAfterEpoch(5))
	mustCreatePost(t, db, "c8", c.ID, hoursAfterEpoch(8))
	mustCreatePost(t, db, "d20", d.ID, hoursAfterEpoch(20))
	if _, err := db.ToggleLike(ctx, viewer.ID, "c8"); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	engine, err := feed.NewEngine(db, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	first, err := engine.FollowingFeed(ctx, viewer.ID, 2, "")
	if err != nil {
		t.Fatalf("FollowingFeed: %v", err)
	}
	if len(first.Posts) != 2 || first.Posts[0].ID != "b10" || first.Posts[1].ID != "c8" {
		t.Fatalf("first page = %+v", first.Posts)
	}
	if !first.Posts[1].LikedByMe || first.Posts[0].LikedByMe {
		t.Error("likedByMe flags not annotated from the store")
	}
	if first.Posts[0].Author.Username != "bee" {
		t.Errorf("author = %+v", first.Posts[0].Author)
	}
	if first.NextCursor == nil {
		t.Fatal("expected next cursor")
	}

	second, err := engine.FollowingFeed(ctx, viewer.ID, 2, *first.NextCursor)
	if err != nil {
		t.Fatalf("FollowingFeed: %v", err)
	}
	if len(second.Posts) != 1 || second.Posts[0].ID != "b5" || second.NextCursor != nil {
		t.Fatalf("second page = %+v, cursor %v", second.Posts, second.NextCursor)
	}

	forYou, err := engine.ForYouFeed(ctx, "")
	if err != nil {
		t.Fatalf("ForYouFeed: %v", err)
	}
	if len(forYou.Posts) != 4 {
		t.Fatalf("for-you returned %d posts, want 4", len(forYou.Posts))
	}
	if forYou.Posts[0].ID != "c8" {
		t.Errorf("liked post should rank first, got %s", forYou.Posts[0].ID)
	}
}

func assertPostCounter(t *testing.T, db *DB, postID string, field func(*models.Post) int64, want int64) {
	t.Helper()
	p, err := db.PostByID(context.Background(), postID)
	if err != nil {
		t.Fatalf("PostByID: %v", err)
	}
	if got := field(p); got != want {
		t.Errorf("counter on %s = %d, want %d", postID, got, want)
	}
}
