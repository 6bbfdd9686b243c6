// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/galleria/internal/model"
)

// CreateGalleryParams holds the input for CreateGallery.
type CreateGalleryParams struct {
	Name          string
	Description   string
	ThumbnailPath string
}

// CreateGallery inserts a gallery and returns the stored row.
func (q *Queries) CreateGallery(ctx context.Context, arg CreateGalleryParams) (model.Gallery, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO galleries (name, description, thumbnail_path) VALUES (?, ?, ?)`,
		arg.Name, arg.Description, arg.ThumbnailPath)
	if err != nil {
		return model.Gallery{}, fmt.Errorf("inserting gallery: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Gallery{}, fmt.Errorf("reading insert id: %w", err)
	}
	return q.GetGalleryByID(ctx, id)
}

// GetGalleryByID returns a gallery, or ErrNotFound.
func (q *Queries) GetGalleryByID(ctx context.Context, id int64) (model.Gallery, error) {
	var g model.Gallery
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, description, thumbnail_path, created_at FROM galleries WHERE id = ?`,
		id).Scan(&g.ID, &g.Name, &g.Description, &g.ThumbnailPath, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Gallery{}, ErrNotFound
	}
	if err != nil {
		return model.Gallery{}, fmt.Errorf("querying gallery: %w", err)
	}
	return g, nil
}

// ListGalleries returns all galleries, newest first.
func (q *Queries) ListGalleries(ctx context.Context) ([]model.Gallery, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, description, thumbnail_path, created_at FROM galleries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing galleries: %w", err)
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

// UpdateGalleryParams holds the input for UpdateGallery.
type UpdateGalleryParams struct {
	ID            int64
	Name          string
	Description   string
	ThumbnailPath string
}

// UpdateGallery updates a gallery's fields. Returns ErrNotFound when the
// gallery does not exist.
func (q *Queries) UpdateGallery(ctx context.Context, arg UpdateGalleryParams) (model.Gallery, error) {
	result, err := q.db.ExecContext(ctx,
		`UPDATE galleries SET name = ?, description = ?, thumbnail_path = ? WHERE id = ?`,
		arg.Name, arg.Description, arg.ThumbnailPath, arg.ID)
	if err != nil {
		return model.Gallery{}, fmt.Errorf("updating gallery: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.Gallery{}, fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		return model.Gallery{}, ErrNotFound
	}
	return q.GetGalleryByID(ctx, arg.ID)
}

// DeleteGallery removes a gallery; images, comments, ratings and access
// grants go with it via cascade. Returns ErrNotFound when absent.
func (q *Queries) DeleteGallery(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM galleries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting gallery: %w", err)
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
