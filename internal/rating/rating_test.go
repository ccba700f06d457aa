package rating

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	ratings  map[uint64][]int
	stored   map[uint64]*float64
	updates  int
	readErr  error
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ratings: make(map[uint64][]int),
		stored:  make(map[uint64]*float64),
	}
}

func (s *fakeStore) RatingsBySpace(_ context.Context, spaceID uint64) ([]int, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.ratings[spaceID], nil
}

func (s *fakeStore) UpdateAvgRating(_ context.Context, spaceID uint64, avg *float64) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.updates++
	if avg == nil {
		s.stored[spaceID] = nil
		return nil
	}
	v := *avg
	s.stored[spaceID] = &v
	return nil
}

func TestRecomputeMean(t *testing.T) {
	store := newFakeStore()
	store.ratings[1] = []int{4, 5, 3}
	rec := NewRecomputer(store)

	require.NoError(t, rec.Recompute(context.Background(), 1))
	require.NotNil(t, store.stored[1])
	assert.Equal(t, 4.0, *store.stored[1])
}

func TestRecomputeAfterDeletions(t *testing.T) {
	store := newFakeStore()
	store.ratings[1] = []int{4, 5, 3}
	rec := NewRecomputer(store)
	require.NoError(t, rec.Recompute(context.Background(), 1))

	// Deleting the rating-3 review moves the mean to 4.5.
	store.ratings[1] = []int{4, 5}
	require.NoError(t, rec.Recompute(context.Background(), 1))
	require.NotNil(t, store.stored[1])
	assert.Equal(t, 4.5, *store.stored[1])

	// Deleting everything resets the aggregate to NULL.
	store.ratings[1] = nil
	require.NoError(t, rec.Recompute(context.Background(), 1))
	stored, ok := store.stored[1]
	require.True(t, ok, "NULL must be written, not skipped")
	assert.Nil(t, stored)
}

func TestRecomputeRounding(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"half kept exactly", []int{3, 4}, 3.5},
		{"thirds round down", []int{1, 1, 2}, 1.3},
		{"thirds round up", []int{2, 3, 3}, 2.7},
		{"single review", []int{5}, 5.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.ratings[1] = tc.ratings
			require.NoError(t, NewRecomputer(store).Recompute(context.Background(), 1))
			require.NotNil(t, store.stored[1])
			assert.Equal(t, tc.want, *store.stored[1])
		})
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	store := newFakeStore()
	store.ratings[1] = []int{2, 5}
	rec := NewRecomputer(store)

	require.NoError(t, rec.Recompute(context.Background(), 1))
	first := *store.stored[1]
	require.NoError(t, rec.Recompute(context.Background(), 1))
	assert.Equal(t, first, *store.stored[1])
	assert.Equal(t, 2, store.updates)
}

func TestRecomputePropagatesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.ratings[1] = []int{4}
	store.writeErr = errors.New("deadlock")
	assert.Error(t, NewRecomputer(store).Recompute(context.Background(), 1))

	store = newFakeStore()
	store.readErr = errors.New("connection reset")
	assert.Error(t, NewRecomputer(store).Recompute(context.Background(), 1))
}
