// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/galleria/internal/middleware"
	"github.com/olegiv/galleria/internal/store"
)

// CreateUser creates a user account. Admin only; unlike public
// registration, the admin may assign the admin role.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := validateNewUser(req.Email, req.Password); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
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

	slog.Info("user created by admin", "user_id", user.ID, "role", user.Role)
	WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// ListUsers returns all user accounts. Credential hashes are never part of
// the store's listing, so none can leak here.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		WriteInternalError(w, "Failed to list users")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// DeleteUser removes a user account. The acting admin cannot delete their
// own account; demote or have another admin do it.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	if id == identity.ID {
		WriteBadRequest(w, "You cannot delete your own account", nil)
		return
	}

	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "User not found")
			return
		}
		slog.Error("failed to delete user", "error", err, "user_id", id)
		WriteInternalError(w, "Failed to delete user")
		return
	}

	slog.Info("user deleted", "user_id", id, "deleted_by", identity.ID)
	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// GrantAccessRequest is the gallery access grant request body.
type GrantAccessRequest struct {
	UserID    int64 `json:"userId"`
	GalleryID int64 `json:"galleryId"`
}

// GrantAccess records that a user may view a gallery. Granting access that
// already exists succeeds without effect.
func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	var req GrantAccessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.queries.GetUserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "User not found")
			return
		}
		slog.Error("failed to look up user for grant", "error", err, "user_id", req.UserID)
		WriteInternalError(w, "Failed to grant access")
		return
	}
	if _, err := h.queries.GetGalleryByID(r.Context(), req.GalleryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Gallery not found")
			return
		}
		slog.Error("failed to look up gallery for grant", "error", err, "gallery_id", req.GalleryID)
		WriteInternalError(w, "Failed to grant access")
		return
	}

	if err := h.queries.GrantGalleryAccess(r.Context(), req.UserID, req.GalleryID); err != nil {
		slog.Error("failed to grant gallery access", "error", err, "user_id", req.UserID, "gallery_id", req.GalleryID)
		WriteInternalError(w, "Failed to grant access")
		return
	}

	slog.Info("gallery access granted", "user_id", req.UserID, "gallery_id", req.GalleryID)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"userId":    req.UserID,
		"galleryId": req.GalleryID,
	})
}

// RevokeAccess removes a user's access to a gallery. Revoking access that
// does not exist is not an error; the response reports whether anything
// changed.
func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}
	galleryID, err := parseIDParam(r, "galleryId")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	revoked, err := h.queries.RevokeGalleryAccess(r.Context(), userID, galleryID)
	if err != nil {
		slog.Error("failed to revoke gallery access", "error", err, "user_id", userID, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to revoke access")
		return
	}

	if revoked {
		slog.Info("gallery access revoked", "user_id", userID, "gallery_id", galleryID)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"revoked": revoked})
}

// ListUsersWithAccess returns the users who hold a grant for a gallery.
func (h *Handler) ListUsersWithAccess(w http.ResponseWriter, r *http.Request) {
	galleryID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if _, err := h.queries.GetGalleryByID(r.Context(), galleryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Gallery not found")
			return
		}
		slog.Error("failed to look up gallery", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to list access")
		return
	}

	users, err := h.queries.ListUsersWithAccess(r.Context(), galleryID)
	if err != nil {
		slog.Error("failed to list users with access", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to list access")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}
