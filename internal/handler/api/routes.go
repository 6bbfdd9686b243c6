// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/galleria/internal/middleware"
)

// Routes builds the /api router. loginLimiter wraps the login route only;
// pass nil to disable rate limiting (tests).
func (h *Handler) Routes(loginLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	authenticate := middleware.Authenticate(h.tokens, h.queries)
	requireAdmin := middleware.RequireAdmin()
	requireGalleryAccess := middleware.RequireGalleryAccess(h.queries)

	// Public routes.
	r.Group(func(r chi.Router) {
		if loginLimiter != nil {
			r.With(loginLimiter).Post("/auth/login", h.Login)
		} else {
			r.Post("/auth/login", h.Login)
		}
		r.Post("/users/register", h.Register)

		r.Get("/galleries", h.ListGalleries)
		r.Get("/galleries/{id}", h.GetGallery)
		r.Get("/galleries/{id}/comments", h.ListGalleryComments)
		r.Get("/galleries/{id}/ratings", h.GetGalleryRatings)
		r.Get("/images/{id}/comments", h.ListImageComments)
	})

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/auth/profile", h.Profile)
		r.Get("/users/me/galleries", h.ListMyGalleries)
		r.With(requireGalleryAccess).Get("/galleries/{id}/images", h.ListImages)
		r.Post("/galleries/{id}/comments", h.CreateGalleryComment)
		r.Post("/galleries/{id}/ratings", h.RateGallery)
		r.Post("/images/{id}/comments", h.CreateImageComment)
	})

	// Admin routes.
	r.Group(func(r chi.Router) {
		r.Use(authenticate, requireAdmin)

		r.Post("/admin/users", h.CreateUser)
		r.Get("/admin/users", h.ListUsers)
		r.Delete("/admin/users/{id}", h.DeleteUser)

		r.Post("/admin/gallery-access", h.GrantAccess)
		r.Delete("/admin/gallery-access/{userId}/{galleryId}", h.RevokeAccess)
		r.Get("/admin/gallery-access/{id}", h.ListUsersWithAccess)

		r.Post("/galleries", h.CreateGallery)
		r.Put("/galleries/{id}", h.UpdateGallery)
		r.Delete("/galleries/{id}", h.DeleteGallery)
		r.Post("/galleries/{id}/images", h.UploadImage)
	})

	return r
}
