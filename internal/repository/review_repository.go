package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/smartwaste/collection-booking/internal/model"
)

// ReviewRepo provides persistence for reviews.  The aggregate rating
// derived from these rows lives on collection_points and is maintained
// by the rating recomputer, not by this repo.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ReviewDetail is a review joined with the author's display name.
type ReviewDetail struct {
	ID        uint64  `json:"id"`
	SpaceID   uint64  `json:"space_id"`
	UserID    uint64  `json:"user_id"`
	UserName  string  `json:"user_name"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// Create inserts a review row and populates the generated ID.  A
// duplicate-key violation on (space_id, user_id) maps to
// ErrDuplicateReview.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (space_id, user_id, rating, comment) VALUES (?, ?, ?, ?)`,
		rev.SpaceID, rev.UserID, rev.Rating, rev.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateReview
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return nil
}

// ListBySpace returns all reviews for a point, newest first.
func (r *ReviewRepo) ListBySpace(ctx context.Context, spaceID uint64) ([]ReviewDetail, error) {
	const q = `SELECT r.id, r.space_id, r.user_id, u.name, r.rating, r.comment, r.created_at
	           FROM reviews r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.space_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]ReviewDetail, 0)
	for rows.Next() {
		var d ReviewDetail
		var created time.Time
		if err := rows.Scan(&d.ID, &d.SpaceID, &d.UserID, &d.UserName, &d.Rating, &d.Comment, &created); err != nil {
			return nil, err
		}
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		items = append(items, d)
	}
	return items, rows.Err()
}

// RatingsBySpace projects only the rating values of a point's reviews,
// which is all the aggregate recomputation needs.
func (r *ReviewRepo) RatingsBySpace(ctx context.Context, spaceID uint64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rating FROM reviews WHERE space_id = ?`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ratings []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ratings = append(ratings, v)
	}
	return ratings, rows.Err()
}

// ExistsForUser reports whether the user already reviewed the point.
func (r *ReviewRepo) ExistsForUser(ctx context.Context, spaceID, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reviews WHERE space_id = ? AND user_id = ? LIMIT 1`,
		spaceID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteForUser removes a review after verifying ownership and returns
// the space ID so the caller can recompute the aggregate.  It returns
// sql.ErrNoRows when the review does not exist and ErrForbidden when it
// belongs to a different user.
func (r *ReviewRepo) DeleteForUser(ctx context.Context, reviewID, userID uint64) (uint64, error) {
	var owner, spaceID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, space_id FROM reviews WHERE id = ?`, reviewID).Scan(&owner, &spaceID)
	if err != nil {
		return 0, err
	}
	if owner != userID {
		return 0, ErrForbidden
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, reviewID); err != nil {
		return 0, err
	}
	return spaceID, nil
}
