// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling. Every protected route
// passes through Authenticate, which verifies the bearer token and then
// re-resolves the identity from the database, so deleted users and role
// changes take effect on the very next request even while their token is
// still cryptographically valid.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/galleria/internal/auth"
	"github.com/olegiv/galleria/internal/model"
	"github.com/olegiv/galleria/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity is the context key for the resolved caller identity.
const ContextKeyIdentity ContextKey = "identity"

// APIError represents a JSON error response.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// extractBearerToken pulls the token out of the Authorization header.
// The header must be exactly `Bearer <token>`: case-sensitive scheme,
// a single space, exactly two parts. Anything else is rejected.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// Authenticate creates middleware that requires a valid bearer token.
// The token's subject is re-resolved against the users table; the token's
// embedded email and role are never trusted on their own. On success the
// resolved identity is stored in the request context.
func Authenticate(tokens *auth.TokenService, queries *store.Queries) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractBearerToken(r)
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized",
					"Invalid Authorization header format. Use: Bearer <token>", nil)
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Token has expired", nil)
					return
				}
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
				return
			}

			user, err := queries.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// Valid token, but the account is gone. Fail closed.
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "User not found", nil)
					return
				}
				slog.Error("failed to resolve user during authentication", "error", err, "user_id", claims.UserID)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to authenticate request", nil)
				return
			}

			identity := model.Identity{
				ID:    user.ID,
				Email: user.Email,
				Role:  user.Role,
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the resolved caller identity from the request
// context. Returns nil if the request did not pass Authenticate.
func GetIdentity(r *http.Request) *model.Identity {
	identity, ok := r.Context().Value(ContextKeyIdentity).(model.Identity)
	if !ok {
		return nil
	}
	return &identity
}

// RequireAdmin creates middleware that requires the admin role. It must be
// used after Authenticate.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			if identity == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			if !identity.Role.IsAdmin() {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", identity.ID,
					"user_role", identity.Role,
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin privileges required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireGalleryAccess creates middleware that gates gallery-scoped routes
// on the caller's access grants. Admins bypass the grant check entirely,
// including for galleries that do not exist. For everyone else an unknown
// gallery is simply inaccessible, so authorization never reveals whether
// the gallery exists. Must be used after Authenticate; the gallery id is
// taken from the route's {id} parameter.
func RequireGalleryAccess(queries *store.Queries) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			if identity == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			galleryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid gallery ID", nil)
				return
			}

			if identity.Role.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			hasAccess, err := queries.HasGalleryAccess(r.Context(), identity.ID, galleryID)
			if err != nil {
				slog.Error("failed to check gallery access", "error", err, "user_id", identity.ID, "gallery_id", galleryID)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to check gallery access", nil)
				return
			}

			if !hasAccess {
				slog.Warn("gallery access denied",
					"user_id", identity.ID,
					"gallery_id", galleryID,
					"path", r.URL.Path,
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "You do not have access to this gallery", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
