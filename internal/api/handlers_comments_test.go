// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/tomtom215/reelfeed/internal/events"
	"github.com/tomtom215/reelfeed/internal/models"
)

func createComment(t *testing.T, env *testEnv, postID, token string, body interface{}) *models.CommentView {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/posts/"+postID+"/comments", body, token)
	expectStatus(t, rec, http.StatusCreated)
	var view models.CommentView
	decodeEnvelope(t, rec, &view)
	return &view
}

func listComments(t *testing.T, env *testEnv, path, token string) *models.CommentPage {
	t.Helper()
	rec := env.do(t, http.MethodGet, path, nil, token)
	expectStatus(t, rec, http.StatusOK)
	var page models.CommentPage
	decodeEnvelope(t, rec, &page)
	return &page
}

func TestCreateAndListComments(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	author, authorToken := env.createUser(t, "author")
	fan, fanToken := env.createUser(t, "fan")
	post := createPost(t, env, authorToken)

	c := createComment(t, env, post.ID, fanToken, map[string]string{"text": "  love this  "})
	if c.Text != "love this" || c.Author.Username != "fan" || c.Author.Avatar != models.DefaultAvatar || c.PostID != post.ID {
		t.Errorf("unexpected comment %+v", c)
	}
	if c.Parent != nil || c.LikesCount != 0 || c.LikedByMe {
		t.Errorf("new comment should be top-level and unliked: %+v", c)
	}
	ev := env.emitter.last()
	if ev == nil || ev.Kind != events.KindComment || ev.ActorID != fan.ID || ev.PostID != post.ID || ev.TargetAccountID != author.ID {
		t.Errorf("comment event = %+v", ev)
	}

	reply := createComment(t, env, post.ID, authorToken, map[string]interface{}{"text": "thanks!", "parent": c.ID})
	if reply.Parent == nil || *reply.Parent != c.ID {
		t.Errorf("reply parent = %v, want %s", reply.Parent, c.ID)
	}

	stored, err := env.db.PostByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("PostByID: %v", err)
	}
	if stored.CommentsCount != 2 {
		t.Errorf("commentsCount = %d, want 2", stored.CommentsCount)
	}

	page := listComments(t, env, "/api/posts/"+post.ID+"/comments", fanToken)
	if len(page.Comments) != 1 || page.Comments[0].ID != c.ID || page.NextCursor != nil {
		t.Fatalf("expected only the top-level comment, got %+v", page)
	}
}

func TestCreateCommentRejects(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, authorToken := env.createUser(t, "author")
	_, fanToken := env.createUser(t, "fan")
	post := createPost(t, env, authorToken)
	other := createPost(t, env, authorToken)
	foreign := createComment(t, env, other.ID, fanToken, map[string]string{"text": "elsewhere"})

	tests := []struct {
		name     string
		postID   string
		body     interface{}
		token    string
		wantCode int
		wantErr  string
	}{
		{"blank text", post.ID, map[string]string{"text": "   "}, fanToken, http.StatusBadRequest, ErrCodeValidation},
		{"missing text", post.ID, map[string]string{}, fanToken, http.StatusBadRequest, ErrCodeValidation},
		{"too long", post.ID, map[string]string{"text": strings.Repeat("a", 501)}, fanToken, http.StatusBadRequest, ErrCodeValidation},
		{"unknown field", post.ID, map[string]string{"text": "hi", "mood": "happy"}, fanToken, http.StatusBadRequest, ErrCodeBadRequest},
		{"parent on other post", post.ID, map[string]string{"text": "hi", "parent": foreign.ID}, fanToken, http.StatusBadRequest, ErrCodeBadRequest},
		{"missing post", "missing", map[string]string{"text": "hi"}, fanToken, http.StatusNotFound, ErrCodeNotFound},
		{"anonymous", post.ID, map[string]string{"text": "hi"}, "", http.StatusUnauthorized, ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/posts/"+tt.postID+"/comments", tt.body, tt.token)
			expectStatus(t, rec, tt.wantCode)
			if resp := decodeEnvelope(t, rec, nil); resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want %s", resp.Error, tt.wantErr)
			}
		})
	}

	// 500 characters is the limit, counted in runes.
	createComment(t, env, post.ID, fanToken, map[string]string{"text": strings.Repeat("é", 500)})

	stored, err := env.db.PostByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("PostByID: %v", err)
	}
	if stored.CommentsCount != 1 {
		t.Errorf("rejected comments changed the counter: %d", stored.CommentsCount)
	}
}

func TestListCommentsPagination(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, authorToken := env.createUser(t, "author")
	_, fanToken := env.createUser(t, "fan")
	post := createPost(t, env, authorToken)

	want := make(map[string]bool)
	for i := 0; i < 5; i++ {
		want[createComment(t, env, post.ID, fanToken, map[string]string{"text": "comment"}).ID] = true
	}

	seen := make(map[string]bool)
	path := "/api/posts/" + post.ID + "/comments?limit=2"
	for pages := 0; ; pages++ {
		if pages > 5 {
			t.Fatal("pagination did not terminate")
		}
		page := listComments(t, env, path, fanToken)
		if len(page.Comments) > 2 {
			t.Fatalf("page has %d comments, want at most 2", len(page.Comments))
		}
		for _, c := range page.Comments {
			if seen[c.ID] {
				t.Errorf("comment %s served twice", c.ID)
			}
			seen[c.ID] = true
		}
		if page.NextCursor == nil {
			break
		}
		path = "/api/posts/" + post.ID + "/comments?limit=2&cursor=" + url.QueryEscape(*page.NextCursor)
	}
	if len(seen) != len(want) {
		t.Errorf("served %d comments, want %d", len(seen), len(want))
	}

	bad := listComments(t, env, "/api/posts/"+post.ID+"/comments?cursor=not-a-time", fanToken)
	if len(bad.Comments) != 0 || bad.NextCursor != nil {
		t.Errorf("unreadable cursor should give an empty final page, got %+v", bad)
	}

	rec := env.do(t, http.MethodGet, "/api/posts/missing/comments", nil, fanToken)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestLikeCommentToggle(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, authorToken := env.createUser(t, "author")
	fan, fanToken := env.createUser(t, "fan")
	commenter, commenterToken := env.createUser(t, "commenter")
	post := createPost(t, env, authorToken)
	c := createComment(t, env, post.ID, commenterToken, map[string]string{"text": "first"})

	for i, want := range []bool{true, false, true} {
		rec := env.do(t, http.MethodPost, "/api/comments/"+c.ID+"/like", nil, fanToken)
		expectStatus(t, rec, http.StatusOK)
		var got map[string]bool
		decodeEnvelope(t, rec, &got)
		if got["liked"] != want {
			t.Errorf("toggle %d: liked = %v, want %v", i, got["liked"], want)
		}

		wantKind := events.KindCommentLike
		if !want {
			wantKind = events.KindCommentUnlike
		}
		if ev := env.emitter.last(); ev == nil || ev.Kind != wantKind || ev.ActorID != fan.ID || ev.TargetAccountID != commenter.ID {
			t.Errorf("toggle %d: event = %+v, want %s", i, ev, wantKind)
		}
	}

	page := listComments(t, env, "/api/posts/"+post.ID+"/comments", fanToken)
	if len(page.Comments) != 1 || !page.Comments[0].LikedByMe || page.Comments[0].LikesCount != 1 {
		t.Errorf("fan view = %+v, want liked once", page.Comments)
	}
	page = listComments(t, env, "/api/posts/"+post.ID+"/comments", commenterToken)
	if page.Comments[0].LikedByMe {
		t.Error("likedByMe leaked to another viewer")
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/comments/missing/like", nil, fanToken), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodPost, "/api/comments/"+c.ID+"/like", nil, ""), http.StatusUnauthorized)
}

func TestCommentsRaiseForYouRank(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, authorToken := env.createUser(t, "author")
	_, fanToken := env.createUser(t, "fan")
	older := createPost(t, env, authorToken)
	newer := createPost(t, env, authorToken)

	createComment(t, env, older.ID, fanToken, map[string]string{"text": "this one"})

	rec := env.do(t, http.MethodGet, "/api/feed/for-you", nil, "")
	expectStatus(t, rec, http.StatusOK)
	page := decodeFeed(t, rec)
	if len(page.Posts) != 2 || page.Posts[0].ID != older.ID || page.Posts[1].ID != newer.ID {
		t.Fatalf("for-you order = %+v, want commented post first", page.Posts)
	}
	if page.Posts[0].CommentsCount != 1 {
		t.Errorf("commentsCount = %d, want 1", page.Posts[0].CommentsCount)
	}
}
