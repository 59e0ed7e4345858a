// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package auth provides account authentication for the HTTP API.

A successful login opens a Session stored in BadgerDB with a TTL and hands the
client an HS256 JWT whose "sid" claim names the session and whose "sub" claim
names the account. The token travels either as an Authorization Bearer header
or as the HttpOnly refreshToken cookie.

Authenticating a request verifies the signature first and then the session:
it must exist, must not be expired, and must belong to the account named by
the token. Deleting the session (logout) revokes the token even though its
signature stays valid.

Middleware:

  - RequireViewer rejects unauthenticated requests with 401.
  - OptionalViewer lets them through as anonymous.

Both attach the viewer to the request context; handlers read it with
ViewerID.
*/
package auth
