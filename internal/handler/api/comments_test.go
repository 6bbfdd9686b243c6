// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/olegiv/galleria/internal/store"
)

func TestCreateGalleryComment(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	req := withIdentity(newJSONRequest(t, http.MethodPost,
		"/api/galleries/"+itoa(gallery.ID)+"/comments",
		`{"comment":"Lovely shots"}`,
		map[string]string{"id": itoa(gallery.ID)}), user)
	w := executeHandler(t, h.CreateGalleryComment, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	resp := unmarshalBody[struct {
		Comment store.GalleryComment `json:"comment"`
	}](t, w)
	if resp.Comment.UserID != user.ID {
		t.Errorf("comment author = %d, want %d", resp.Comment.UserID, user.ID)
	}
	if resp.Comment.UserEmail != "alice@example.com" {
		t.Errorf("comment author email = %q", resp.Comment.UserEmail)
	}
}

func TestCreateGalleryCommentValidation(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	req := withIdentity(newJSONRequest(t, http.MethodPost,
		"/api/galleries/"+itoa(gallery.ID)+"/comments",
		`{"comment":"   "}`,
		map[string]string{"id": itoa(gallery.ID)}), user)
	w := executeHandler(t, h.CreateGalleryComment, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCreateGalleryCommentUnknownGallery(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")

	req := withIdentity(newJSONRequest(t, http.MethodPost,
		"/api/galleries/99999/comments", `{"comment":"Hello"}`,
		map[string]string{"id": "99999"}), user)
	w := executeHandler(t, h.CreateGalleryComment, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListGalleryComments(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	ctx := context.Background()
	for _, text := range []string{"first", "second"} {
		if _, err := queries.CreateGalleryComment(ctx, gallery.ID, user.ID, text); err != nil {
			t.Fatalf("creating comment: %v", err)
		}
	}

	w := executeHandler(t, h.ListGalleryComments,
		newGetRequest(t, "/api/galleries/"+itoa(gallery.ID)+"/comments",
			map[string]string{"id": itoa(gallery.ID)}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := unmarshalBody[struct {
		Comments []store.GalleryComment `json:"comments"`
	}](t, w)
	if len(resp.Comments) != 2 {
		t.Errorf("got %d comments, want 2", len(resp.Comments))
	}
}

func TestRateGallery(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	rate := func(rating int) *struct {
		Rating        int64   `json:"rating"`
		TotalRatings  int64   `json:"totalRatings"`
		AverageRating float64 `json:"averageRating"`
	} {
		req := withIdentity(newJSONRequest(t, http.MethodPost,
			"/api/galleries/"+itoa(gallery.ID)+"/ratings",
			fmt.Sprintf(`{"rating":%d}`, rating),
			map[string]string{"id": itoa(gallery.ID)}), user)
		w := executeHandler(t, h.RateGallery, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
		resp := unmarshalBody[struct {
			Rating        int64   `json:"rating"`
			TotalRatings  int64   `json:"totalRatings"`
			AverageRating float64 `json:"averageRating"`
		}](t, w)
		return &resp
	}

	first := rate(4)
	if first.TotalRatings != 1 || first.AverageRating != 4 {
		t.Errorf("first rating stats = %+v", first)
	}

	// Re-rating replaces, not adds.
	second := rate(2)
	if second.TotalRatings != 1 || second.AverageRating != 2 {
		t.Errorf("re-rating stats = %+v", second)
	}
}

func TestRateGalleryOutOfRange(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	for _, rating := range []int{0, 6, -1} {
		req := withIdentity(newJSONRequest(t, http.MethodPost,
			"/api/galleries/"+itoa(gallery.ID)+"/ratings",
			fmt.Sprintf(`{"rating":%d}`, rating),
			map[string]string{"id": itoa(gallery.ID)}), user)
		w := executeHandler(t, h.RateGallery, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("rating %d: status = %d, want 400", rating, w.Code)
		}
	}
}

func TestRateGalleryWithComment(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	req := withIdentity(newJSONRequest(t, http.MethodPost,
		"/api/galleries/"+itoa(gallery.ID)+"/ratings",
		`{"rating":5,"comment":"Stunning"}`,
		map[string]string{"id": itoa(gallery.ID)}), user)
	w := executeHandler(t, h.RateGallery, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	comments, err := queries.ListGalleryComments(context.Background(), gallery.ID)
	if err != nil {
		t.Fatalf("listing comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Comment != "Stunning" {
		t.Errorf("comments = %+v, want the rating comment stored", comments)
	}
}

// The rating and its comment commit together: when the comment write
// fails, no rating is left behind.
func TestRateGalleryCommentFailureLeavesNoRating(t *testing.T) {
	h, queries := testSetup(t)
	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	// Break the comment insert only; the ratings table stays intact.
	if _, err := h.db.Exec(`DROP TABLE gallery_comments`); err != nil {
		t.Fatalf("dropping table: %v", err)
	}

	req := withIdentity(newJSONRequest(t, http.MethodPost,
		"/api/galleries/"+itoa(gallery.ID)+"/ratings",
		`{"rating":5,"comment":"Stunning"}`,
		map[string]string{"id": itoa(gallery.ID)}), user)
	w := executeHandler(t, h.RateGallery, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", w.Code, w.Body.String())
	}

	stats, err := queries.GetGalleryRatingStats(context.Background(), gallery.ID)
	if err != nil {
		t.Fatalf("reading stats: %v", err)
	}
	if stats.TotalRatings != 0 {
		t.Errorf("total ratings = %d, want 0 after rollback", stats.TotalRatings)
	}
}

func TestGetGalleryRatings(t *testing.T) {
	h, queries := testSetup(t)
	ctx := context.Background()

	alice := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	bob := createTestUser(t, queries, "bob@example.com", "secret123", "user")
	gallery := createTestGallery(t, queries, "Vacation")

	if err := queries.UpsertRating(ctx, gallery.ID, alice.ID, 5); err != nil {
		t.Fatalf("rating: %v", err)
	}
	if err := queries.UpsertRating(ctx, gallery.ID, bob.ID, 2); err != nil {
		t.Fatalf("rating: %v", err)
	}

	w := executeHandler(t, h.GetGalleryRatings,
		newGetRequest(t, "/api/galleries/"+itoa(gallery.ID)+"/ratings",
			map[string]string{"id": itoa(gallery.ID)}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := unmarshalBody[struct {
		TotalRatings  int64          `json:"totalRatings"`
		AverageRating float64        `json:"averageRating"`
		Ratings       []store.Rating `json:"ratings"`
	}](t, w)
	if resp.TotalRatings != 2 {
		t.Errorf("total = %d, want 2", resp.TotalRatings)
	}
	if resp.AverageRating != 3.5 {
		t.Errorf("average = %v, want 3.5", resp.AverageRating)
	}
	if len(resp.Ratings) != 2 {
		t.Errorf("got %d ratings, want 2", len(resp.Ratings))
	}
}

func TestImageComments(t *testing.T) {
	h, queries := testSetup(t)
	ctx := context.Background()

	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")
	img, err := queries.CreateImage(ctx, store.CreateImageParams{
		GalleryID: gallery.ID,
		Name:      "Beach",
		FilePath:  "abc.png",
	})
	if err != nil {
		t.Fatalf("creating image: %v", err)
	}

	req := withIdentity(newJSONRequest(t, http.MethodPost,
		"/api/images/"+itoa(img.ID)+"/comments",
		`{"comment":"Great light","rating":4}`,
		map[string]string{"id": itoa(img.ID)}), user)
	w := executeHandler(t, h.CreateImageComment, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	w = executeHandler(t, h.ListImageComments,
		newGetRequest(t, "/api/images/"+itoa(img.ID)+"/comments",
			map[string]string{"id": itoa(img.ID)}))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	resp := unmarshalBody[struct {
		Comments []store.ImageComment `json:"comments"`
	}](t, w)
	if len(resp.Comments) != 1 || resp.Comments[0].Rating != 4 {
		t.Errorf("comments = %+v", resp.Comments)
	}
}

func TestImageCommentValidation(t *testing.T) {
	h, queries := testSetup(t)
	ctx := context.Background()

	user := createTestUser(t, queries, "alice@example.com", "correct-horse", "user")
	gallery := createTestGallery(t, queries, "Vacation")
	img, err := queries.CreateImage(ctx, store.CreateImageParams{
		GalleryID: gallery.ID,
		Name:      "Beach",
		FilePath:  "abc.png",
	})
	if err != nil {
		t.Fatalf("creating image: %v", err)
	}

	tests := []struct {
		name string
		body string
	}{
		{"missing comment", `{"rating":4}`},
		{"rating too low", `{"comment":"x","rating":0}`},
		{"rating too high", `{"comment":"x","rating":6}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withIdentity(newJSONRequest(t, http.MethodPost,
				"/api/images/"+itoa(img.ID)+"/comments", tt.body,
				map[string]string{"id": itoa(img.ID)}), user)
			w := executeHandler(t, h.CreateImageComment, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}
