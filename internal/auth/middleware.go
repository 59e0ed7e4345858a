// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/models"
)

// CookieName is the cookie carrying the session token.
const CookieName = "refreshToken"

type contextKey string

const sessionContextKey contextKey = "session"

var errMissingToken = errors.New("missing token")

// Middleware authenticates HTTP requests against the session service.
type Middleware struct {
	service *Service
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireViewer rejects requests without a valid session with 401.
func (m *Middleware) RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.authenticate(r)
		if err != nil {
			if !errors.Is(err, errMissingToken) && !errors.Is(err, ErrInvalidToken) {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Session lookup failed")
			} else {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected unauthenticated request")
			}
			writeUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

// OptionalViewer attaches the viewer when the request carries a valid
// session and otherwise continues anonymously.
func (m *Middleware) OptionalViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.authenticate(r)
		if err != nil {
			if !errors.Is(err, errMissingToken) {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("Ignoring invalid session on optional route")
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Session, error) {
	token, err := TokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	return m.service.Authenticate(r.Context(), token)
}

// TokenFromRequest returns the bearer token, falling back to the session
// cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", errMissingToken
	}
	return cookie.Value, nil
}

// ContextWithSession attaches session to ctx and tags request logs with the
// viewer.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, session)
	return logging.ContextWithViewerID(ctx, session.UserID)
}

// SessionFromContext returns the session attached by the middleware.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	return session, ok && session != nil
}

// ViewerID returns the authenticated account ID, or "" for anonymous requests.
func ViewerID(ctx context.Context) string {
	if session, ok := SessionFromContext(ctx); ok {
		return session.UserID
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	resp := models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: "Authentication required",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode unauthorized response")
	}
}

// SetSessionCookie writes the session token cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session token cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
