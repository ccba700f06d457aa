package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smartwaste/collection-booking/internal/availability"
)

// AvailabilityStore adapts the SQL repositories to the
// availability.Store interface.  It translates sql.ErrNoRows into the
// checker's not-found sentinel so the core never sees database/sql.
type AvailabilityStore struct {
	Points *CollectionPointRepo
	Visits *VisitRepo
}

// NewAvailabilityStore wires the two repositories together.
func NewAvailabilityStore(points *CollectionPointRepo, visits *VisitRepo) *AvailabilityStore {
	return &AvailabilityStore{Points: points, Visits: visits}
}

func (s *AvailabilityStore) GetCapacity(ctx context.Context, spaceID uint64) (availability.Capacity, error) {
	seats, fullSpace, err := s.Points.GetCapacity(ctx, spaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return availability.Capacity{}, availability.ErrPointNotFound
	}
	if err != nil {
		return availability.Capacity{}, err
	}
	return availability.Capacity{Seats: seats, FullSpaceBooking: fullSpace}, nil
}

func (s *AvailabilityStore) CountVisits(ctx context.Context, spaceID uint64, from, to time.Time) (int, error) {
	return s.Visits.CountByRange(ctx, spaceID, from, to)
}

func (s *AvailabilityStore) VisitDates(ctx context.Context, spaceID uint64, from, to time.Time) ([]time.Time, error) {
	return s.Visits.DatesByRange(ctx, spaceID, from, to)
}

// RatingStore adapts the repositories to the rating.Store interface.
type RatingStore struct {
	Points  *CollectionPointRepo
	Reviews *ReviewRepo
}

// NewRatingStore wires the two repositories together.
func NewRatingStore(points *CollectionPointRepo, reviews *ReviewRepo) *RatingStore {
	return &RatingStore{Points: points, Reviews: reviews}
}

func (s *RatingStore) RatingsBySpace(ctx context.Context, spaceID uint64) ([]int, error) {
	return s.Reviews.RatingsBySpace(ctx, spaceID)
}

func (s *RatingStore) UpdateAvgRating(ctx context.Context, spaceID uint64, avg *float64) error {
	return s.Points.UpdateAvgRating(ctx, spaceID, avg)
}
