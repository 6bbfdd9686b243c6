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

// CreateImageParams holds the input for CreateImage.
type CreateImageParams struct {
	GalleryID   int64
	Name        string
	Description string
	FilePath    string
}

// CreateImage inserts an image row for a gallery.
func (q *Queries) CreateImage(ctx context.Context, arg CreateImageParams) (model.Image, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO images (gallery_id, name, description, file_path) VALUES (?, ?, ?, ?)`,
		arg.GalleryID, arg.Name, arg.Description, arg.FilePath)
	if err != nil {
		return model.Image{}, fmt.Errorf("inserting image: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Image{}, fmt.Errorf("reading insert id: %w", err)
	}
	return q.GetImageByID(ctx, id)
}

// GetImageByID returns an image, or ErrNotFound.
func (q *Queries) GetImageByID(ctx context.Context, id int64) (model.Image, error) {
	var img model.Image
	err := q.db.QueryRowContext(ctx,
		`SELECT id, gallery_id, name, description, file_path, created_at FROM images WHERE id = ?`,
		id).Scan(&img.ID, &img.GalleryID, &img.Name, &img.Description, &img.FilePath, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Image{}, ErrNotFound
	}
	if err != nil {
		return model.Image{}, fmt.Errorf("querying image: %w", err)
	}
	return img, nil
}

// ListImagesByGallery returns all images of a gallery.
func (q *Queries) ListImagesByGallery(ctx context.Context, galleryID int64) ([]model.Image, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, gallery_id, name, description, file_path, created_at
		 FROM images WHERE gallery_id = ? ORDER BY id`,
		galleryID)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(&img.ID, &img.GalleryID, &img.Name, &img.Description, &img.FilePath, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating images: %w", err)
	}
	return images, nil
}
