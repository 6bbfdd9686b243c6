// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/galleria/internal/model"
)

// EnsureAdmin creates the initial admin user when no admin exists yet.
// It is a no-op when an admin is already present, so restarts are safe.
func (q *Queries) EnsureAdmin(ctx context.Context, email, password string) error {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`, string(model.RoleAdmin)).Scan(&count)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:    email,
		Password: password,
		Role:     string(model.RoleAdmin),
	})
	if err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}

	slog.Info("seeded initial admin user", "user_id", user.ID, "email", user.Email)
	return nil
}
