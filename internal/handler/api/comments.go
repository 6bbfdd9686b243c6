// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/galleria/internal/middleware"
	"github.com/olegiv/galleria/internal/store"
)

// ListGalleryComments returns a gallery's comments. Public read.
func (h *Handler) ListGalleryComments(w http.ResponseWriter, r *http.Request) {
	galleryID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if !h.requireGallery(w, r, galleryID) {
		return
	}

	comments, err := h.queries.ListGalleryComments(r.Context(), galleryID)
	if err != nil {
		slog.Error("failed to list gallery comments", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to list comments")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// CommentRequest is the comment creation request body.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// CreateGalleryComment adds a comment to a gallery. Requires
// authentication; the author is always the resolved caller identity, never
// a client-supplied user id.
func (h *Handler) CreateGalleryComment(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	galleryID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if !h.requireGallery(w, r, galleryID) {
		return
	}

	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		WriteValidationError(w, map[string]string{"comment": "Comment is required"})
		return
	}

	comment, err := h.queries.CreateGalleryComment(r.Context(), galleryID, identity.ID, req.Comment)
	if err != nil {
		slog.Error("failed to create gallery comment", "error", err, "gallery_id", galleryID, "user_id", identity.ID)
		WriteInternalError(w, "Failed to create comment")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"comment": comment})
}

// GetGalleryRatings returns a gallery's rating stats and individual
// ratings. Public read.
func (h *Handler) GetGalleryRatings(w http.ResponseWriter, r *http.Request) {
	galleryID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if !h.requireGallery(w, r, galleryID) {
		return
	}

	stats, err := h.queries.GetGalleryRatingStats(r.Context(), galleryID)
	if err != nil {
		slog.Error("failed to get rating stats", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to get ratings")
		return
	}

	ratings, err := h.queries.ListGalleryRatings(r.Context(), galleryID)
	if err != nil {
		slog.Error("failed to list ratings", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to get ratings")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"totalRatings":  stats.TotalRatings,
		"averageRating": stats.AverageRating,
		"ratings":       ratings,
	})
}

// RatingRequest is the gallery rating request body. The optional comment is
// stored as a regular gallery comment alongside the rating.
type RatingRequest struct {
	Rating  int64  `json:"rating"`
	Comment string `json:"comment"`
}

// RateGallery records the caller's 1-5 rating of a gallery, replacing any
// previous rating by the same user. The rating and its optional comment
// are written in one transaction. Requires authentication.
func (h *Handler) RateGallery(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	galleryID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if !h.requireGallery(w, r, galleryID) {
		return
	}

	var req RatingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		WriteValidationError(w, map[string]string{"rating": "Rating must be between 1 and 5"})
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin rating transaction", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to save rating")
		return
	}
	defer func() { _ = tx.Rollback() }()

	qtx := store.New(tx)
	if err := qtx.UpsertRating(r.Context(), galleryID, identity.ID, req.Rating); err != nil {
		slog.Error("failed to upsert rating", "error", err, "gallery_id", galleryID, "user_id", identity.ID)
		WriteInternalError(w, "Failed to save rating")
		return
	}

	if strings.TrimSpace(req.Comment) != "" {
		if _, err := qtx.CreateGalleryComment(r.Context(), galleryID, identity.ID, req.Comment); err != nil {
			slog.Error("failed to store rating comment", "error", err, "gallery_id", galleryID, "user_id", identity.ID)
			WriteInternalError(w, "Failed to save rating")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit rating", "error", err, "gallery_id", galleryID, "user_id", identity.ID)
		WriteInternalError(w, "Failed to save rating")
		return
	}

	stats, err := h.queries.GetGalleryRatingStats(r.Context(), galleryID)
	if err != nil {
		slog.Error("failed to get rating stats", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to save rating")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"rating":        req.Rating,
		"totalRatings":  stats.TotalRatings,
		"averageRating": stats.AverageRating,
	})
}

// ListImageComments returns an image's comments. Public read.
func (h *Handler) ListImageComments(w http.ResponseWriter, r *http.Request) {
	imageID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid image ID", nil)
		return
	}

	if _, err := h.queries.GetImageByID(r.Context(), imageID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Image not found")
			return
		}
		slog.Error("failed to get image", "error", err, "image_id", imageID)
		WriteInternalError(w, "Failed to list comments")
		return
	}

	comments, err := h.queries.ListImageComments(r.Context(), imageID)
	if err != nil {
		slog.Error("failed to list image comments", "error", err, "image_id", imageID)
		WriteInternalError(w, "Failed to list comments")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// ImageCommentRequest is the image comment request body.
type ImageCommentRequest struct {
	Comment string `json:"comment"`
	Rating  int64  `json:"rating"`
}

// CreateImageComment adds a comment with a 1-5 rating to an image.
// Requires authentication.
func (h *Handler) CreateImageComment(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	imageID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid image ID", nil)
		return
	}

	if _, err := h.queries.GetImageByID(r.Context(), imageID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Image not found")
			return
		}
		slog.Error("failed to get image", "error", err, "image_id", imageID)
		WriteInternalError(w, "Failed to create comment")
		return
	}

	var req ImageCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Comment) == "" {
		fieldErrors["comment"] = "Comment is required"
	}
	if req.Rating < 1 || req.Rating > 5 {
		fieldErrors["rating"] = "Rating must be between 1 and 5"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	comment, err := h.queries.CreateImageComment(r.Context(), store.CreateImageCommentParams{
		ImageID: imageID,
		UserID:  identity.ID,
		Comment: req.Comment,
		Rating:  req.Rating,
	})
	if err != nil {
		slog.Error("failed to create image comment", "error", err, "image_id", imageID, "user_id", identity.ID)
		WriteInternalError(w, "Failed to create comment")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"comment": comment})
}

// requireGallery verifies the gallery exists, writing 404 or 500 when it
// does not. Returns true when the caller may proceed.
func (h *Handler) requireGallery(w http.ResponseWriter, r *http.Request, galleryID int64) bool {
	if _, err := h.queries.GetGalleryByID(r.Context(), galleryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Gallery not found")
			return false
		}
		slog.Error("failed to get gallery", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to load gallery")
		return false
	}
	return true
}
