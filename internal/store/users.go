// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/galleria/internal/auth"
	"github.com/olegiv/galleria/internal/model"
)

// Credentials is a user row including the password hash. It is returned
// only by GetUserByEmail, for password verification at login; every other
// user query omits the hash.
type Credentials struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         model.Role
}

// CreateUserParams holds the input for CreateUser. Password is plaintext;
// it is hashed before storage and never persisted or logged.
type CreateUserParams struct {
	Email    string
	Password string
	Role     string
}

// CreateUser creates a user with a hashed password. The role is normalized
// here, at the credential-store boundary: only the literal "admin" is
// stored as admin. A taken email surfaces as ErrDuplicateEmail from the
// insert itself; there is no lookup a concurrent registration could race
// past.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	hash, err := auth.HashPassword(arg.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	role := model.NormalizeRole(arg.Role)

	result, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)`,
		arg.Email, hash, string(role))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("reading insert id: %w", err)
	}

	return q.GetUserByID(ctx, id)
}

// GetUserByEmail returns the user's credentials for password verification.
// Returns ErrNotFound when no user has the given email; the caller decides
// how to report that.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (Credentials, error) {
	var c Credentials
	var role string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role FROM users WHERE email = ?`,
		email).Scan(&c.ID, &c.Email, &c.PasswordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("querying user by email: %w", err)
	}
	c.Role = model.Role(role)
	return c, nil
}

// GetUserByID returns a user without credential material.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	var role string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, email, role, created_at FROM users WHERE id = ?`,
		id).Scan(&u.ID, &u.Email, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("querying user by id: %w", err)
	}
	u.Role = model.Role(role)
	return u, nil
}

// ListUsers returns all users, identity and role only.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, email, role, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Role = model.Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user. Access grants are pruned by the foreign key
// cascade. Returns ErrNotFound when no such user exists.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
