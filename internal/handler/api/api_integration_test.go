// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// integrationSetup builds the full API router backed by a migrated test
// database, with rate limiting disabled.
func integrationSetup(t *testing.T) (chi.Router, *Handler) {
	t.Helper()
	h, _ := testSetup(t)
	return h.Routes(nil), h
}

// do sends a request through the router and returns the recorder.
func do(t *testing.T, router chi.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// loginFor registers nothing; it logs an existing user in and returns the
// token.
func loginFor(t *testing.T, router chi.Router, email, password string) string {
	t.Helper()

	w := do(t, router, http.MethodPost, "/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d: %s", email, w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling login response: %v", err)
	}
	return resp.Token
}

// Register user A, grant access to one gallery, and walk the full
// allow/deny/revoke cycle through the HTTP surface.
func TestGalleryAccessLifecycle(t *testing.T) {
	router, h := integrationSetup(t)

	createTestUser(t, h.queries, "admin@example.com", "admin-secret", "admin")
	adminToken := loginFor(t, router, "admin@example.com", "admin-secret")

	// Register user A through the public endpoint.
	w := do(t, router, http.MethodPost, "/users/register", "",
		`{"email":"a@example.com","password":"secret123","role":"user"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d: %s", w.Code, w.Body.String())
	}
	var reg struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("unmarshaling register response: %v", err)
	}
	tokenA := loginFor(t, router, "a@example.com", "secret123")

	granted := createTestGallery(t, h.queries, "Granted gallery")
	other := createTestGallery(t, h.queries, "Other gallery")

	// Admin grants A access to the first gallery.
	w = do(t, router, http.MethodPost, "/admin/gallery-access", adminToken,
		fmt.Sprintf(`{"userId":%d,"galleryId":%d}`, reg.User.ID, granted.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("grant: status = %d: %s", w.Code, w.Body.String())
	}

	// A can fetch the granted gallery's images.
	w = do(t, router, http.MethodGet, fmt.Sprintf("/galleries/%d/images", granted.ID), tokenA, "")
	if w.Code != http.StatusOK {
		t.Fatalf("granted gallery images: status = %d: %s", w.Code, w.Body.String())
	}

	// No grant for the other gallery.
	w = do(t, router, http.MethodGet, fmt.Sprintf("/galleries/%d/images", other.ID), tokenA, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("ungranted gallery images: status = %d, want 403", w.Code)
	}

	// After revocation the granted gallery is also denied.
	w = do(t, router, http.MethodDelete,
		fmt.Sprintf("/admin/gallery-access/%d/%d", reg.User.ID, granted.ID), adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("revoke: status = %d: %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, fmt.Sprintf("/galleries/%d/images", granted.ID), tokenA, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("after revoke: status = %d, want 403", w.Code)
	}
}

// The admin bypasses grant checks entirely, including for galleries that do
// not exist; the handler then reports those as missing.
func TestAdminBypassesGalleryAccess(t *testing.T) {
	router, h := integrationSetup(t)

	createTestUser(t, h.queries, "admin@example.com", "admin-secret", "admin")
	adminToken := loginFor(t, router, "admin@example.com", "admin-secret")
	gallery := createTestGallery(t, h.queries, "Any gallery")

	w := do(t, router, http.MethodGet, fmt.Sprintf("/galleries/%d/images", gallery.ID), adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin images: status = %d: %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/galleries/99999/images", adminToken, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("admin nonexistent gallery: status = %d, want 404", w.Code)
	}
}

// A deleted user's still-valid token stops working on the very next
// request.
func TestDeletedUserLockedOutOverHTTP(t *testing.T) {
	router, h := integrationSetup(t)

	createTestUser(t, h.queries, "admin@example.com", "admin-secret", "admin")
	adminToken := loginFor(t, router, "admin@example.com", "admin-secret")

	user := createTestUser(t, h.queries, "doomed@example.com", "secret123", "user")
	userToken := loginFor(t, router, "doomed@example.com", "secret123")

	w := do(t, router, http.MethodGet, "/auth/profile", userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("profile before delete: status = %d", w.Code)
	}

	w = do(t, router, http.MethodDelete, fmt.Sprintf("/admin/users/%d", user.ID), adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete user: status = %d: %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/auth/profile", userToken, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("profile after delete: status = %d, want 401", w.Code)
	}
}

// Non-admins cannot reach admin routes.
func TestAdminRoutesForbiddenForUsers(t *testing.T) {
	router, h := integrationSetup(t)

	createTestUser(t, h.queries, "alice@example.com", "secret123", "user")
	token := loginFor(t, router, "alice@example.com", "secret123")

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/admin/users"},
		{http.MethodPost, "/admin/users"},
		{http.MethodDelete, "/admin/users/1"},
		{http.MethodPost, "/admin/gallery-access"},
	} {
		w := do(t, router, route.method, route.path, token, "")
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: status = %d, want 403", route.method, route.path, w.Code)
		}
	}
}

// Protected routes reject missing tokens outright.
func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := integrationSetup(t)

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/auth/profile"},
		{http.MethodGet, "/galleries/1/images"},
		{http.MethodGet, "/admin/users"},
	} {
		w := do(t, router, route.method, route.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", route.method, route.path, w.Code)
		}
	}
}
