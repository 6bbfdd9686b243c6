// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/olegiv/galleria/internal/auth"
	"github.com/olegiv/galleria/internal/middleware"
	"github.com/olegiv/galleria/internal/model"
	"github.com/olegiv/galleria/internal/store"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// invalidCredentialsMsg is deliberately identical for an unknown email and
// a wrong password, so login responses never confirm which emails exist.
const invalidCredentialsMsg = "Invalid email or password"

// LoginRequest is the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the authenticated identity.
type LoginResponse struct {
	Token string         `json:"token"`
	User  model.Identity `json:"user"`
}

// Login authenticates a user by email and password and issues a session
// token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required", nil)
		return
	}

	creds, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteUnauthorized(w, invalidCredentialsMsg)
			return
		}
		slog.Error("failed to look up user at login", "error", err)
		WriteInternalError(w, "Failed to process login")
		return
	}

	valid, err := auth.CheckPassword(req.Password, creds.PasswordHash)
	if err != nil {
		slog.Error("failed to verify password", "error", err, "user_id", creds.ID)
		WriteInternalError(w, "Failed to process login")
		return
	}
	if !valid {
		slog.Info("failed login attempt", "user_id", creds.ID)
		WriteUnauthorized(w, invalidCredentialsMsg)
		return
	}

	token, err := h.tokens.Issue(creds.ID, creds.Email, creds.Role)
	if err != nil {
		slog.Error("failed to issue token", "error", err, "user_id", creds.ID)
		WriteInternalError(w, "Failed to process login")
		return
	}

	slog.Info("user logged in", "user_id", creds.ID)
	WriteJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User: model.Identity{
			ID:    creds.ID,
			Email: creds.Email,
			Role:  creds.Role,
		},
	})
}

// RegisterRequest is the self-registration request body. A role may be
// supplied but anything except the literal "admin" is stored as a regular
// user, and this public endpoint rejects admin self-registration outright.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new user account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := validateNewUser(req.Email, req.Password); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	role := req.Role
	if model.NormalizeRole(role).IsAdmin() {
		// Admin accounts are created by existing admins only.
		role = string(model.RoleUser)
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			WriteConflict(w, "Email is already registered")
			return
		}
		slog.Error("failed to create user", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Profile returns the authenticated user's account.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		slog.Error("failed to load profile", "error", err, "user_id", identity.ID)
		WriteInternalError(w, "Failed to load profile")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// validateNewUser checks email shape and password length for user creation.
func validateNewUser(email, password string) map[string]string {
	fieldErrors := make(map[string]string)

	if email == "" {
		fieldErrors["email"] = "Email is required"
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fieldErrors["email"] = "Invalid email address"
	}

	if len(password) < MinPasswordLength {
		fieldErrors["password"] = "Password must be at least 6 characters"
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}
