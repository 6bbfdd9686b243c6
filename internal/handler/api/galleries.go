// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/galleria/internal/middleware"
	"github.com/olegiv/galleria/internal/model"
	"github.com/olegiv/galleria/internal/store"
)

// maxUploadSize caps multipart form memory for gallery and image uploads.
const maxUploadSize = 32 << 20 // 32 MB

// ListGalleries returns all galleries, newest first. Public: the listing
// itself is not gated, only per-gallery image access is.
func (h *Handler) ListGalleries(w http.ResponseWriter, r *http.Request) {
	galleries, err := h.queries.ListGalleries(r.Context())
	if err != nil {
		slog.Error("failed to list galleries", "error", err)
		WriteInternalError(w, "Failed to list galleries")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"galleries": galleries})
}

// ListMyGalleries returns the galleries the caller may view: the granted
// set for regular users, every gallery for admins.
func (h *Handler) ListMyGalleries(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var galleries []model.Gallery
	var err error
	if identity.Role.IsAdmin() {
		galleries, err = h.queries.ListGalleries(r.Context())
	} else {
		galleries, err = h.queries.ListGalleriesForUser(r.Context(), identity.ID)
	}
	if err != nil {
		slog.Error("failed to list accessible galleries", "error", err, "user_id", identity.ID)
		WriteInternalError(w, "Failed to list galleries")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"galleries": galleries})
}

// GetGallery returns a single gallery.
func (h *Handler) GetGallery(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	gallery, err := h.queries.GetGalleryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Gallery not found")
			return
		}
		slog.Error("failed to get gallery", "error", err, "gallery_id", id)
		WriteInternalError(w, "Failed to get gallery")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"gallery": gallery})
}

// CreateGallery creates a gallery from a multipart form. An optional
// thumbnail file is stored under the uploads directory with a generated
// name. Admin only.
func (h *Handler) CreateGallery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	thumbnailPath, ok := h.saveThumbnailField(w, r)
	if !ok {
		return
	}

	gallery, err := h.queries.CreateGallery(r.Context(), store.CreateGalleryParams{
		Name:          name,
		Description:   r.FormValue("description"),
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		slog.Error("failed to create gallery", "error", err)
		WriteInternalError(w, "Failed to create gallery")
		return
	}

	slog.Info("gallery created", "gallery_id", gallery.ID)
	WriteJSON(w, http.StatusCreated, map[string]any{"gallery": gallery})
}

// UpdateGallery updates a gallery's name, description and optionally its
// thumbnail. Admin only.
func (h *Handler) UpdateGallery(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	existing, err := h.queries.GetGalleryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Gallery not found")
			return
		}
		slog.Error("failed to get gallery", "error", err, "gallery_id", id)
		WriteInternalError(w, "Failed to update gallery")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = existing.Name
	}
	description := existing.Description
	if _, present := r.MultipartForm.Value["description"]; present {
		description = r.FormValue("description")
	}

	thumbnailPath, ok := h.saveThumbnailField(w, r)
	if !ok {
		return
	}
	if thumbnailPath == "" {
		thumbnailPath = existing.ThumbnailPath
	}

	gallery, err := h.queries.UpdateGallery(r.Context(), store.UpdateGalleryParams{
		ID:            id,
		Name:          name,
		Description:   description,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		slog.Error("failed to update gallery", "error", err, "gallery_id", id)
		WriteInternalError(w, "Failed to update gallery")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"gallery": gallery})
}

// DeleteGallery removes a gallery. Images, comments, ratings and access
// grants are pruned by cascade. Admin only.
func (h *Handler) DeleteGallery(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if err := h.queries.DeleteGallery(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Gallery not found")
			return
		}
		slog.Error("failed to delete gallery", "error", err, "gallery_id", id)
		WriteInternalError(w, "Failed to delete gallery")
		return
	}

	slog.Info("gallery deleted", "gallery_id", id)
	WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// ListImages returns a gallery's images. The route is behind the gallery
// access gate, so by the time this runs the caller is either an admin or
// holds a grant. An admin can still hit a nonexistent gallery here.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if _, err := h.queries.GetGalleryByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Gallery not found")
			return
		}
		slog.Error("failed to get gallery", "error", err, "gallery_id", id)
		WriteInternalError(w, "Failed to list images")
		return
	}

	images, err := h.queries.ListImagesByGallery(r.Context(), id)
	if err != nil {
		slog.Error("failed to list images", "error", err, "gallery_id", id)
		WriteInternalError(w, "Failed to list images")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"images": images})
}

// UploadImage adds an image to a gallery from a multipart form. Admin only.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
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
		slog.Error("failed to get gallery", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to upload image")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "Image file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.images.SaveUpload(file, header.Filename)
	if err != nil {
		WriteBadRequest(w, "Unsupported or corrupt image file", nil)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	image, err := h.queries.CreateImage(r.Context(), store.CreateImageParams{
		GalleryID:   galleryID,
		Name:        name,
		Description: r.FormValue("description"),
		FilePath:    result.FileName,
	})
	if err != nil {
		slog.Error("failed to create image", "error", err, "gallery_id", galleryID)
		WriteInternalError(w, "Failed to upload image")
		return
	}

	slog.Info("image uploaded", "image_id", image.ID, "gallery_id", galleryID)
	WriteJSON(w, http.StatusCreated, map[string]any{"image": image})
}

// saveThumbnailField stores an optional "thumbnail" file field and returns
// the stored thumbnail path. Returns ok=false with the response already
// written when the upload is invalid. An absent field yields an empty path.
func (h *Handler) saveThumbnailField(w http.ResponseWriter, r *http.Request) (string, bool) {
	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		WriteBadRequest(w, "Invalid thumbnail upload", nil)
		return "", false
	}
	defer func() { _ = file.Close() }()

	result, err := h.images.SaveUpload(file, header.Filename)
	if err != nil {
		WriteBadRequest(w, "Unsupported or corrupt thumbnail file", nil)
		return "", false
	}

	thumbName, err := h.images.CreateThumbnail(result.FileName)
	if err != nil {
		slog.Error("failed to create thumbnail", "error", err, "file", result.FileName)
		// Keep the original if the resize fails.
		return result.FileName, true
	}
	return thumbName, true
}
