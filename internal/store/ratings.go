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

// Rating is a user's 1-5 rating of a gallery.
type Rating struct {
	ID        int64     `json:"id"`
	GalleryID int64     `json:"gallery_id"`
	UserID    int64     `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Rating    int64     `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingStats aggregates the ratings of a gallery.
type RatingStats struct {
	TotalRatings  int64   `json:"total_ratings"`
	AverageRating float64 `json:"average_rating"`
}

// UpsertRating records a user's rating of a gallery, replacing any rating
// the user gave before. One rating per (gallery, user) pair.
func (q *Queries) UpsertRating(ctx context.Context, galleryID, userID, rating int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO ratings (gallery_id, user_id, rating) VALUES (?, ?, ?)
		 ON CONFLICT (gallery_id, user_id) DO UPDATE SET rating = excluded.rating`,
		galleryID, userID, rating)
	if err != nil {
		return fmt.Errorf("upserting rating: %w", err)
	}
	return nil
}

// GetUserRating returns the rating a user gave a gallery, or ErrNotFound.
func (q *Queries) GetUserRating(ctx context.Context, galleryID, userID int64) (int64, error) {
	var rating int64
	err := q.db.QueryRowContext(ctx,
		`SELECT rating FROM ratings WHERE gallery_id = ? AND user_id = ?`,
		galleryID, userID).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("querying user rating: %w", err)
	}
	return rating, nil
}

// GetGalleryRatingStats returns the count and average of a gallery's
// ratings. A gallery with no ratings yields zeros, not an error.
func (q *Queries) GetGalleryRatingStats(ctx context.Context, galleryID int64) (RatingStats, error) {
	var stats RatingStats
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(ROUND(AVG(rating), 1), 0) FROM ratings WHERE gallery_id = ?`,
		galleryID).Scan(&stats.TotalRatings, &stats.AverageRating)
	if err != nil {
		return RatingStats{}, fmt.Errorf("querying rating stats: %w", err)
	}
	return stats, nil
}

// ListGalleryRatings returns a gallery's individual ratings, newest first.
func (q *Queries) ListGalleryRatings(ctx context.Context, galleryID int64) ([]Rating, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT r.id, r.gallery_id, r.user_id, u.email, r.rating, r.created_at
		 FROM ratings r
		 JOIN users u ON r.user_id = u.id
		 WHERE r.gallery_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`,
		galleryID)
	if err != nil {
		return nil, fmt.Errorf("listing ratings: %w", err)
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.ID, &r.GalleryID, &r.UserID, &r.UserEmail, &r.Rating, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ratings: %w", err)
	}
	return ratings, nil
}
