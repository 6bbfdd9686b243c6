// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/olegiv/galleria/internal/model"
)

// GrantGalleryAccess records that a user may view a gallery. Granting an
// existing pair is a no-op: the operation is idempotent.
func (q *Queries) GrantGalleryAccess(ctx context.Context, userID, galleryID int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO user_gallery_access (user_id, gallery_id) VALUES (?, ?)
		 ON CONFLICT (user_id, gallery_id) DO NOTHING`,
		userID, galleryID)
	if err != nil {
		return fmt.Errorf("granting gallery access: %w", err)
	}
	return nil
}

// RevokeGalleryAccess removes a grant. Revoking a pair that does not exist
// is not an error; the returned bool reports whether anything was removed.
func (q *Queries) RevokeGalleryAccess(ctx context.Context, userID, galleryID int64) (bool, error) {
	result, err := q.db.ExecContext(ctx,
		`DELETE FROM user_gallery_access WHERE user_id = ? AND gallery_id = ?`,
		userID, galleryID)
	if err != nil {
		return false, fmt.Errorf("revoking gallery access: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return affected > 0, nil
}

// HasGalleryAccess reports whether a grant exists for the pair. An unknown
// gallery yields false, not an error, so authorization answers never leak
// resource existence.
func (q *Queries) HasGalleryAccess(ctx context.Context, userID, galleryID int64) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_gallery_access WHERE user_id = ? AND gallery_id = ?`,
		userID, galleryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking gallery access: %w", err)
	}
	return count > 0, nil
}

// ListUsersWithAccess returns the users holding a grant for a gallery.
func (q *Queries) ListUsersWithAccess(ctx context.Context, galleryID int64) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.role, u.created_at
		 FROM users u
		 JOIN user_gallery_access uga ON u.id = uga.user_id
		 WHERE uga.gallery_id = ?
		 ORDER BY u.id`,
		galleryID)
	if err != nil {
		return nil, fmt.Errorf("listing users with access: %w", err)
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

// ListGalleriesForUser returns the galleries a user has been granted.
func (q *Queries) ListGalleriesForUser(ctx context.Context, userID int64) ([]model.Gallery, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.thumbnail_path, g.created_at
		 FROM galleries g
		 JOIN user_gallery_access uga ON g.id = uga.gallery_id
		 WHERE uga.user_id = ?
		 ORDER BY g.id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing galleries for user: %w", err)
	}
	defer rows.Close()

	var galleries []model.Gallery
	for rows.Next() {
		var g model.Gallery
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.ThumbnailPath, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning gallery: %w", err)
		}
		galleries = append(galleries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating galleries: %w", err)
	}
	return galleries, nil
}
