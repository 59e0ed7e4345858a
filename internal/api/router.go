// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMw *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		chiMiddleware: chiMw,
	}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/health", router.handler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", router.handler.Register)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
			r.Post("/logout", router.handler.Logout)
			r.With(router.auth.RequireViewer).Get("/me", router.handler.Me)
		})

		// The engine decides which feeds need a viewer.
		r.Route("/feed", func(r chi.Router) {
			r.Use(router.auth.OptionalViewer)
			r.Get("/following", router.handler.FollowingFeed)
			r.Get("/for-you", router.handler.ForYouFeed)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(router.auth.RequireViewer)
			r.Post("/", router.handler.CreatePost)
			r.Post("/{postId}/like", router.handler.LikePost)
			r.Post("/{postId}/bookmark", router.handler.BookmarkPost)
			r.Post("/{postId}/view", router.handler.ViewPost)
			r.Get("/{postId}/comments", router.handler.ListComments)
			r.Post("/{postId}/comments", router.handler.CreateComment)
		})

		r.With(router.auth.RequireViewer).Post("/comments/{commentId}/like", router.handler.LikeComment)

		// Static segments win over {username} in chi.
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(router.auth.RequireViewer)
				r.Get("/following", router.handler.FollowingList)
				r.Get("/suggested", router.handler.SuggestedUsers)
				r.Post("/{username}/follow", router.handler.ToggleFollow)
			})
			r.Group(func(r chi.Router) {
				r.Use(router.auth.OptionalViewer)
				r.Get("/{username}", router.handler.Profile)
				r.Get("/{username}/posts", router.handler.UserPosts)
			})
		})
	})

	return r
}
