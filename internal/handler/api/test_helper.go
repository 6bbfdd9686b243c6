// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/galleria/internal/auth"
	"github.com/olegiv/galleria/internal/imaging"
	"github.com/olegiv/galleria/internal/middleware"
	"github.com/olegiv/galleria/internal/model"
	"github.com/olegiv/galleria/internal/store"
	"github.com/olegiv/galleria/internal/testutil"
)

const testSecret = "kX9#mP2$vL8@nQ4!wR6^tY3&zB5*cF7j"

// testSetup creates a migrated test database and an API handler. Handler
// logging goes through the quiet test logger.
func testSetup(t *testing.T) (*Handler, *store.Queries) {
	t.Helper()

	slog.SetDefault(testutil.TestLogger())

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	tokens := auth.NewTokenService(testSecret, time.Hour)
	images := imaging.NewProcessor(t.TempDir())
	return NewHandler(db, tokens, images), store.New(db)
}

// createTestUser creates a user and returns it.
func createTestUser(t *testing.T, queries *store.Queries, email, password, role string) model.User {
	t.Helper()

	user, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestGallery creates a gallery and returns it.
func createTestGallery(t *testing.T, queries *store.Queries, name string) model.Gallery {
	t.Helper()

	gallery, err := queries.CreateGallery(context.Background(), store.CreateGalleryParams{
		Name: name,
	})
	if err != nil {
		t.Fatalf("failed to create test gallery: %v", err)
	}
	return gallery
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withIdentity places a resolved identity in the request context, the way
// the authentication middleware does.
func withIdentity(r *http.Request, user model.User) *http.Request {
	identity := model.Identity{ID: user.ID, Email: user.Email, Role: user.Role}
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyIdentity, identity))
}

// newJSONRequest creates an HTTP request with a JSON body and optional URL
// params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newGetRequest creates an HTTP GET request with optional URL params.
func newGetRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newDeleteRequest creates an HTTP DELETE request with optional URL params.
func newDeleteRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// executeHandler executes a handler and returns the response recorder.
func executeHandler(t *testing.T, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// unmarshalBody unmarshals a JSON response body into the specified type.
func unmarshalBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return v
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// errorCode extracts the machine error code from an error response body.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := unmarshalBody[ErrorResponse](t, w)
	return resp.Error.Code
}
