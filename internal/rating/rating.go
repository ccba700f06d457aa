// Package rating keeps a collection point's aggregate rating in sync
// with its reviews.  The recomputation is read-then-write with no
// isolation guarantee: under concurrent review mutations on the same
// point the stored average may briefly reflect a stale read, but it is
// correct again once mutation traffic for the point stops.
package rating

import (
	"context"
	"math"
)

// Store is the persistence surface for recomputation: the current
// ratings of a point and a single-row update of its aggregate.
type Store interface {
	// RatingsBySpace returns the rating values of all reviews for the
	// point, nothing else.
	RatingsBySpace(ctx context.Context, spaceID uint64) ([]int, error)
	// UpdateAvgRating persists the aggregate.  A nil value stores NULL,
	// meaning "no rating yet" as opposed to "rated zero".
	UpdateAvgRating(ctx context.Context, spaceID uint64, avg *float64) error
}

// Recomputer recomputes the mean review rating of a collection point.
// Callers must invoke Recompute synchronously after every review create
// and delete, before reporting success: a failed recomputation fails
// the triggering mutation instead of leaving the aggregate stale.
type Recomputer struct {
	store Store
}

// NewRecomputer returns a Recomputer backed by the given store.
func NewRecomputer(store Store) *Recomputer {
	if store == nil {
		panic("nil store passed to NewRecomputer")
	}
	return &Recomputer{store: store}
}

// Recompute reads all ratings for the point and stores their mean
// rounded to one decimal place, or NULL when no reviews exist.  It is
// idempotent: with no intervening review mutation, repeated calls store
// the same value.
func (r *Recomputer) Recompute(ctx context.Context, spaceID uint64) error {
	ratings, err := r.store.RatingsBySpace(ctx, spaceID)
	if err != nil {
		return err
	}
	if len(ratings) == 0 {
		return r.store.UpdateAvgRating(ctx, spaceID, nil)
	}
	sum := 0
	for _, v := range ratings {
		sum += v
	}
	avg := Round1(float64(sum) / float64(len(ratings)))
	return r.store.UpdateAvgRating(ctx, spaceID, &avg)
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
