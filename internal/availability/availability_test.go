package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for tests.  Visits are stored as
// plain timestamps; the day bucketing happens in the checker, exactly
// as with the SQL-backed store.
type fakeStore struct {
	points map[uint64]Capacity
	visits map[uint64][]time.Time
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		points: make(map[uint64]Capacity),
		visits: make(map[uint64][]time.Time),
	}
}

func (s *fakeStore) addVisits(spaceID uint64, dates ...time.Time) {
	s.visits[spaceID] = append(s.visits[spaceID], dates...)
}

func (s *fakeStore) GetCapacity(_ context.Context, spaceID uint64) (Capacity, error) {
	if s.err != nil {
		return Capacity{}, s.err
	}
	cap, ok := s.points[spaceID]
	if !ok {
		return Capacity{}, ErrPointNotFound
	}
	return cap, nil
}

func (s *fakeStore) CountVisits(ctx context.Context, spaceID uint64, from, to time.Time) (int, error) {
	dates, err := s.VisitDates(ctx, spaceID, from, to)
	return len(dates), err
}

func (s *fakeStore) VisitDates(_ context.Context, spaceID uint64, from, to time.Time) ([]time.Time, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []time.Time
	for _, d := range s.visits[spaceID] {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

// day builds a timestamp at noon so the checker's normalization to day
// bounds is actually exercised.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

var today = day(2026, time.March, 10)

func TestCheckDatePastAndToday(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 5}
	checker := NewChecker(store)

	for _, d := range []time.Time{
		today,
		day(2026, time.March, 9),
		day(2020, time.January, 1),
	} {
		got, err := checker.CheckDate(context.Background(), 1, d, today)
		require.NoError(t, err)
		assert.False(t, got.Available, "date %s must not be bookable", d)
		assert.Equal(t, 0, got.RemainingSeats)
	}
}

func TestCheckDateFullSpacePolicy(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 5, FullSpaceBooking: true}
	checker := NewChecker(store)
	target := day(2026, time.March, 20)

	got, err := checker.CheckDate(context.Background(), 1, target, today)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, 5, got.RemainingSeats)

	// One visit takes the whole point for the day.
	store.addVisits(1, target)
	got, err = checker.CheckDate(context.Background(), 1, target, today)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, 0, got.RemainingSeats)
}

func TestCheckDatePerSeatPolicy(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 3}
	checker := NewChecker(store)
	target := day(2026, time.March, 20)

	store.addVisits(1, target, target)
	got, err := checker.CheckDate(context.Background(), 1, target, today)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, 1, got.RemainingSeats)

	store.addVisits(1, target)
	got, err = checker.CheckDate(context.Background(), 1, target, today)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, 0, got.RemainingSeats)
}

func TestCheckDateCountsOnlyTargetDay(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 2}
	checker := NewChecker(store)

	// Visits on the surrounding days must not count against the 20th.
	store.addVisits(1,
		day(2026, time.March, 19),
		time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC),
	)
	got, err := checker.CheckDate(context.Background(), 1, day(2026, time.March, 20), today)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, 2, got.RemainingSeats)
}

func TestCheckDateUnknownPoint(t *testing.T) {
	checker := NewChecker(newFakeStore())
	got, err := checker.CheckDate(context.Background(), 99, day(2026, time.March, 20), today)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, 0, got.RemainingSeats)
}

func TestCheckDateStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 3}
	store.err = errors.New("connection reset")
	checker := NewChecker(store)

	_, err := checker.CheckDate(context.Background(), 1, day(2026, time.March, 20), today)
	assert.Error(t, err)
}

func TestCheckDateOverbookedDay(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 2}
	checker := NewChecker(store)
	target := day(2026, time.March, 20)

	// A lost race can leave more visits than seats.  The raw arithmetic
	// surfaces in RemainingSeats, availability stays false.
	store.addVisits(1, target, target, target)
	got, err := checker.CheckDate(context.Background(), 1, target, today)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, -1, got.RemainingSeats)
}

func TestMonthlyAvailabilityUnknownPoint(t *testing.T) {
	checker := NewChecker(newFakeStore())
	dates, err := checker.MonthlyAvailability(context.Background(), 99, 2026, time.March, today)
	assert.ErrorIs(t, err, ErrPointNotFound)
	assert.Nil(t, dates)
}

func TestMonthlyAvailabilitySkipsPastDays(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 1}
	checker := NewChecker(store)

	dates, err := checker.MonthlyAvailability(context.Background(), 1, 2026, time.March, today)
	require.NoError(t, err)
	// March has 31 days; the 1st through the 10th are cut off.
	assert.Len(t, dates, 21)
	assert.Equal(t, "2026-03-11", dates[0])
	assert.Equal(t, "2026-03-31", dates[len(dates)-1])
	for i := 1; i < len(dates); i++ {
		assert.Less(t, dates[i-1], dates[i], "dates must be strictly ascending")
	}
}

func TestMonthlyAvailabilityFullSpaceExcludesBookedDays(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 4, FullSpaceBooking: true}
	checker := NewChecker(store)
	store.addVisits(1, day(2026, time.March, 15))

	dates, err := checker.MonthlyAvailability(context.Background(), 1, 2026, time.March, today)
	require.NoError(t, err)
	assert.NotContains(t, dates, "2026-03-15")
	assert.Contains(t, dates, "2026-03-14")
	assert.Contains(t, dates, "2026-03-16")
}

func TestMonthlyAvailabilityPerSeatThreshold(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 2}
	checker := NewChecker(store)
	// 15th fully booked, 16th half booked.
	store.addVisits(1,
		day(2026, time.March, 15), day(2026, time.March, 15),
		day(2026, time.March, 16),
	)

	dates, err := checker.MonthlyAvailability(context.Background(), 1, 2026, time.March, today)
	require.NoError(t, err)
	assert.NotContains(t, dates, "2026-03-15")
	assert.Contains(t, dates, "2026-03-16")
}

func TestMonthlyAvailabilityFullyBookedMonth(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 1}
	checker := NewChecker(store)
	for d := 1; d <= 31; d++ {
		store.addVisits(1, day(2026, time.March, d))
	}

	dates, err := checker.MonthlyAvailability(context.Background(), 1, 2026, time.March, today)
	require.NoError(t, err)
	// Exists but fully booked: an empty result, not a not-found error.
	assert.Empty(t, dates)
}

func TestMonthlyAvailabilityWholeMonthInPast(t *testing.T) {
	store := newFakeStore()
	store.points[1] = Capacity{Seats: 3}
	checker := NewChecker(store)

	dates, err := checker.MonthlyAvailability(context.Background(), 1, 2025, time.December, today)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, FullPointPolicy{Seats: 7}, PolicyFor(Capacity{Seats: 7, FullSpaceBooking: true}))
	assert.Equal(t, PerSeatPolicy{Seats: 7}, PolicyFor(Capacity{Seats: 7}))
}
