// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package api exposes the feed service over HTTP using the chi router.

Routes:

	GET  /api/health                      store ping
	GET  /metrics                         Prometheus
	POST /api/auth/register               create an account
	POST /api/auth/login                  open a session (5 per 15 min per IP)
	POST /api/auth/logout                 close the session
	GET  /api/auth/me                     current account
	GET  /api/feed/following              following feed, cursor paged (auth)
	GET  /api/feed/for-you                ranked feed (auth optional)
	POST /api/posts                       create a post (auth)
	POST /api/posts/{postId}/like         toggle like (auth)
	POST /api/posts/{postId}/bookmark     toggle bookmark (auth)
	POST /api/posts/{postId}/view         record a view (auth)
	POST /api/users/{username}/follow     toggle follow (auth)
	GET  /api/users/following             accounts the viewer follows (auth)

Feed endpoints answer with the bare {posts, nextCursor} body. Everything else
uses the models.APIResponse envelope. Feed store failures are logged and
answered with an empty page so clients keep scrolling.
*/
package api
