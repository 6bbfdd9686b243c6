// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/olegiv/galleria/internal/model"
)

func TestLogin(t *testing.T) {
	h, queries := testSetup(t)
	createTestUser(t, queries, "alice@example.com", "correct-horse", "user")

	req := newJSONRequest(t, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"correct-horse"}`, nil)
	w := executeHandler(t, h.Login, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	resp := unmarshalBody[LoginResponse](t, w)
	if resp.Token == "" {
		t.Error("expected a token in the response")
	}
	if resp.User.Email != "alice@example.com" {
		t.Errorf("user email = %q", resp.User.Email)
	}
	if resp.User.Role != model.RoleUser {
		t.Errorf("user role = %q, want user", resp.User.Role)
	}

	// The token's verified claims carry the stored role.
	claims, err := h.tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verifying issued token: %v", err)
	}
	if claims.Role != string(model.RoleUser) {
		t.Errorf("claims role = %q, want user", claims.Role)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("claims user_id = %d, want %d", claims.UserID, resp.User.ID)
	}
}

func TestLoginMissingFields(t *testing.T) {
	h, _ := testSetup(t)

	for _, body := range []string{
		`{}`,
		`{"email":"alice@example.com"}`,
		`{"password":"secret"}`,
	} {
		req := newJSONRequest(t, http.MethodPost, "/api/auth/login", body, nil)
		w := executeHandler(t, h.Login, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLoginBadCredentialsSameMessage(t *testing.T) {
	h, queries := testSetup(t)
	createTestUser(t, queries, "alice@example.com", "correct-horse", "user")

	unknownReq := newJSONRequest(t, http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.com","password":"whatever1"}`, nil)
	unknown := executeHandler(t, h.Login, unknownReq)

	wrongReq := newJSONRequest(t, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"wrong-password"}`, nil)
	wrong := executeHandler(t, h.Login, wrongReq)

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401, 401", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Errorf("responses differ:\n%s\n%s", unknown.Body.String(), wrong.Body.String())
	}
}

func TestLoginWrongPasswordTwiceNeverIssuesToken(t *testing.T) {
	h, queries := testSetup(t)
	createTestUser(t, queries, "alice@example.com", "correct-horse", "user")

	for i := 0; i < 2; i++ {
		req := newJSONRequest(t, http.MethodPost, "/api/auth/login",
			`{"email":"alice@example.com","password":"wrong-password"}`, nil)
		w := executeHandler(t, h.Login, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, w.Code)
		}
		body := unmarshalBody[map[string]any](t, w)
		if _, found := body["token"]; found {
			t.Fatalf("attempt %d: response contains a token", i+1)
		}
	}
}

func TestRegister(t *testing.T) {
	h, _ := testSetup(t)

	req := newJSONRequest(t, http.MethodPost, "/api/users/register",
		`{"email":"bob@example.com","password":"secret123"}`, nil)
	w := executeHandler(t, h.Register, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	resp := unmarshalBody[struct {
		User model.User `json:"user"`
	}](t, w)
	if resp.User.Email != "bob@example.com" {
		t.Errorf("email = %q", resp.User.Email)
	}
	if resp.User.Role != model.RoleUser {
		t.Errorf("role = %q, want user", resp.User.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := testSetup(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"secret123"}`},
		{"bad email", `{"email":"not-an-email","password":"secret123"}`},
		{"short password", `{"email":"bob@example.com","password":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPost, "/api/users/register", tt.body, nil)
			w := executeHandler(t, h.Register, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, queries := testSetup(t)
	createTestUser(t, queries, "bob@example.com", "secret123", "user")

	req := newJSONRequest(t, http.MethodPost, "/api/users/register",
		`{"email":"bob@example.com","password":"secret123"}`, nil)
	w := executeHandler(t, h.Register, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if code := errorCode(t, w); code != "conflict" {
		t.Errorf("error code = %q, want conflict", code)
	}
}

// Public registration never yields an admin account, whatever the role
// field says.
func TestRegisterCannotSelfAssignAdmin(t *testing.T) {
	h, _ := testSetup(t)

	req := newJSONRequest(t, http.MethodPost, "/api/users/register",
		`{"email":"eve@example.com","password":"secret123","role":"admin"}`, nil)
	w := executeHandler(t, h.Register, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	resp := unmarshalBody[struct {
		User model.User `json:"user"`
	}](t, w)
	if resp.User.Role != model.RoleUser {
		t.Errorf("role = %q, want user", resp.User.Role)
	}
}

func TestProfile(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")

	req := withIdentity(newGetRequest(t, "/api/auth/profile", nil), user)
	w := executeHandler(t, h.Profile, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	resp := unmarshalBody[struct {
		User model.User `json:"user"`
	}](t, w)
	if resp.User.ID != user.ID || resp.User.Email != user.Email {
		t.Errorf("profile = %+v, want user %d", resp.User, user.ID)
	}
}
