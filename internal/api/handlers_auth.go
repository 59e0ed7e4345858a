// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/reelfeed/internal/audit"
	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/models"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful login. The token is also set as
// the session cookie.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *models.Account `json:"user"`
}

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create account", err)
		return
	}

	acct := &models.Account{
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleMember,
	}
	if err := h.store.CreateAccount(r.Context(), acct); err != nil {
		if errors.Is(err, database.ErrConflict) {
			respondError(w, r, http.StatusConflict, ErrCodeConflict, "Email or username already taken", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create account", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", acct.ID).Msg("Account registered")
	h.audit.LogRegistered(r.Context(), acct.ID, acct.Username, audit.SourceFromRequest(r))
	respondJSON(w, r, http.StatusCreated, acct)
}

// Login checks credentials and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	email := strings.ToLower(req.Email)
	acct, err := h.store.AccountByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.audit.LogLoginFailure(r.Context(), email, audit.SourceFromRequest(r), "unknown_email")
			respondError(w, r, http.StatusBadRequest, ErrCodeInvalidCredentials, "Invalid email or password", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Login failed", err)
		return
	}

	if err := auth.CheckPassword(acct.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logging.Ctx(r.Context()).Info().Str("user_id", acct.ID).Str("ip", clientIP(r)).Msg("Failed login")
			h.audit.LogLoginFailure(r.Context(), email, audit.SourceFromRequest(r), "wrong_password")
			respondError(w, r, http.StatusBadRequest, ErrCodeInvalidCredentials, "Invalid email or password", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Login failed", err)
		return
	}

	token, session, err := h.sessions.StartSession(r.Context(), acct.ID, r.UserAgent(), clientIP(r))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Login failed", err)
		return
	}

	h.audit.LogLoginSuccess(r.Context(), acct.ID, acct.Username, audit.SourceFromRequest(r))
	auth.SetSessionCookie(w, token, session.ExpiresAt, h.config.Security.CookieSecure)
	respondJSON(w, r, http.StatusOK, &LoginResponse{Token: token, ExpiresAt: session.ExpiresAt, User: acct})
}

// Logout revokes the caller's session and clears the cookie. It succeeds
// without a session too.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := auth.TokenFromRequest(r); err == nil {
		var accountID string
		if session, err := h.sessions.Authenticate(r.Context(), token); err == nil {
			accountID = session.UserID
		}
		if err := h.sessions.EndSession(r.Context(), token); err != nil {
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Logout failed", err)
			return
		}
		if accountID != "" {
			h.audit.LogLogout(r.Context(), accountID, audit.SourceFromRequest(r))
		}
	}

	auth.ClearSessionCookie(w, h.config.Security.CookieSecure)
	respondJSON(w, r, http.StatusOK, map[string]bool{"loggedOut": true})
}

// Me returns the authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acct, err := h.store.AccountByID(r.Context(), auth.ViewerID(r.Context()))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Account not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load account", err)
		return
	}
	respondJSON(w, r, http.StatusOK, acct)
}
