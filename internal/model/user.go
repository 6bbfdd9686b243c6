// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types shared across the application:
// user roles, the resolved caller identity, and gallery structures.
package model

import "time"

// Role is the closed set of user roles. It is decided once, when a user
// record is created, and never re-derived from raw strings downstream.
type Role string

// Known roles. Anything that is not exactly "admin" is a regular user.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// NormalizeRole maps an arbitrary role string onto the closed Role set.
// Only the literal string "admin" grants the admin role.
func NormalizeRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin returns true for the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Identity is the resolved, trusted (id, email, role) tuple for the caller
// of a request. It is produced by the authentication middleware from a
// fresh credential-store lookup, never from token claims alone.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// User is a user record as exposed to API consumers. The credential hash
// never appears here.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
