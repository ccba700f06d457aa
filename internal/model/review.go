package model

import "time"

// Review is a citizen's rating of a collection point, optionally with a
// comment.  Creating or deleting a review triggers recomputation of the
// point's AvgRating so the aggregate always mirrors the current review
// set.
//
// Fields:
//  ID        – primary key identifier.
//  SpaceID   – reviewed collection point.
//  UserID    – citizen who wrote the review.
//  Rating    – integer rating, expected 1–5.
//  Comment   – optional free text (nil when omitted).
//  CreatedAt – creation timestamp.
type Review struct {
	ID        uint64    // reviews.id
	SpaceID   uint64    // reviews.space_id
	UserID    uint64    // reviews.user_id
	Rating    int       // reviews.rating
	Comment   *string   // reviews.comment (nullable)
	CreatedAt time.Time // reviews.created_at
}
