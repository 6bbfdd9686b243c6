// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GalleryComment is a comment on a gallery, joined with the author's email.
type GalleryComment struct {
	ID        int64     `json:"id"`
	GalleryID int64     `json:"gallery_id"`
	UserID    int64     `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageComment is a comment on an image, carrying a 1-5 rating.
type ImageComment struct {
	ID        int64     `json:"id"`
	ImageID   int64     `json:"image_id"`
	UserID    int64     `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Comment   string    `json:"comment"`
	Rating    int64     `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateGalleryComment inserts a comment and returns it with the author's
// email resolved.
func (q *Queries) CreateGalleryComment(ctx context.Context, galleryID, userID int64, comment string) (GalleryComment, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO gallery_comments (gallery_id, user_id, comment) VALUES (?, ?, ?)`,
		galleryID, userID, comment)
	if err != nil {
		return GalleryComment{}, fmt.Errorf("inserting gallery comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return GalleryComment{}, fmt.Errorf("reading insert id: %w", err)
	}
	return q.GetGalleryCommentByID(ctx, id)
}

// GetGalleryCommentByID returns a single gallery comment, or ErrNotFound.
func (q *Queries) GetGalleryCommentByID(ctx context.Context, id int64) (GalleryComment, error) {
	var c GalleryComment
	err := q.db.QueryRowContext(ctx,
		`SELECT gc.id, gc.gallery_id, gc.user_id, u.email, gc.comment, gc.created_at
		 FROM gallery_comments gc
		 JOIN users u ON gc.user_id = u.id
		 WHERE gc.id = ?`,
		id).Scan(&c.ID, &c.GalleryID, &c.UserID, &c.UserEmail, &c.Comment, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return GalleryComment{}, ErrNotFound
	}
	if err != nil {
		return GalleryComment{}, fmt.Errorf("querying gallery comment: %w", err)
	}
	return c, nil
}

// ListGalleryComments returns a gallery's comments, newest first.
func (q *Queries) ListGalleryComments(ctx context.Context, galleryID int64) ([]GalleryComment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT gc.id, gc.gallery_id, gc.user_id, u.email, gc.comment, gc.created_at
		 FROM gallery_comments gc
		 JOIN users u ON gc.user_id = u.id
		 WHERE gc.gallery_id = ?
		 ORDER BY gc.created_at DESC, gc.id DESC`,
		galleryID)
	if err != nil {
		return nil, fmt.Errorf("listing gallery comments: %w", err)
	}
	defer rows.Close()

	var comments []GalleryComment
	for rows.Next() {
		var c GalleryComment
		if err := rows.Scan(&c.ID, &c.GalleryID, &c.UserID, &c.UserEmail, &c.Comment, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning gallery comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gallery comments: %w", err)
	}
	return comments, nil
}

// CreateImageCommentParams holds the input for CreateImageComment.
type CreateImageCommentParams struct {
	ImageID int64
	UserID  int64
	Comment string
	Rating  int64
}

// CreateImageComment inserts an image comment with its rating.
func (q *Queries) CreateImageComment(ctx context.Context, arg CreateImageCommentParams) (ImageComment, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO image_comments (image_id, user_id, comment, rating) VALUES (?, ?, ?, ?)`,
		arg.ImageID, arg.UserID, arg.Comment, arg.Rating)
	if err != nil {
		return ImageComment{}, fmt.Errorf("inserting image comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return ImageComment{}, fmt.Errorf("reading insert id: %w", err)
	}

	var c ImageComment
	err = q.db.QueryRowContext(ctx,
		`SELECT ic.id, ic.image_id, ic.user_id, u.email, ic.comment, ic.rating, ic.created_at
		 FROM image_comments ic
		 JOIN users u ON ic.user_id = u.id
		 WHERE ic.id = ?`,
		id).Scan(&c.ID, &c.ImageID, &c.UserID, &c.UserEmail, &c.Comment, &c.Rating, &c.CreatedAt)
	if err != nil {
		return ImageComment{}, fmt.Errorf("querying image comment: %w", err)
	}
	return c, nil
}

// ListImageComments returns an image's comments, newest first.
func (q *Queries) ListImageComments(ctx context.Context, imageID int64) ([]ImageComment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT ic.id, ic.image_id, ic.user_id, u.email, ic.comment, ic.rating, ic.created_at
		 FROM image_comments ic
		 JOIN users u ON ic.user_id = u.id
		 WHERE ic.image_id = ?
		 ORDER BY ic.created_at DESC, ic.id DESC`,
		imageID)
	if err != nil {
		return nil, fmt.Errorf("listing image comments: %w", err)
	}
	defer rows.Close()

	var comments []ImageComment
	for rows.Next() {
		var c ImageComment
		if err := rows.Scan(&c.ID, &c.ImageID, &c.UserID, &c.UserEmail, &c.Comment, &c.Rating, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning image comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating image comments: %w", err)
	}
	return comments, nil
}
