// Package availability implements the capacity accounting for
// collection points: whether a single calendar day is still bookable
// and which days of a month remain open.  The computation is advisory:
// it reads fresh state on every call and holds no lock, so a caller
// that uses it to gate a booking insert accepts a small race window
// between the count and the insert.  True enforcement would need a
// store-level constraint.
package availability

import (
	"context"
	"errors"
	"time"
)

// ErrPointNotFound is returned by MonthlyAvailability when the
// collection point does not exist.  It is deliberately distinct from an
// empty result, which means the point exists but has no open days left
// in the month.
var ErrPointNotFound = errors.New("collection point not found")

// dayFormat is the wire format for calendar days.
const dayFormat = "2006-01-02"

// Capacity is the booking configuration of a collection point as read
// from the store.
type Capacity struct {
	Seats            int  // total daily capacity
	FullSpaceBooking bool // one visit consumes the whole point for the day
}

// Store is the minimal persistence surface the checker needs.  The
// repository layer adapts the SQL repositories to it; tests provide an
// in-memory fake.
type Store interface {
	// GetCapacity returns the capacity configuration of a point or
	// ErrPointNotFound when no such point exists.
	GetCapacity(ctx context.Context, spaceID uint64) (Capacity, error)
	// CountVisits returns the number of visits for the point whose
	// booking date lies within [from, to].
	CountVisits(ctx context.Context, spaceID uint64, from, to time.Time) (int, error)
	// VisitDates returns the booking dates of all visits for the point
	// within [from, to].  Duplicates are returned as-is, one entry per
	// visit.
	VisitDates(ctx context.Context, spaceID uint64, from, to time.Time) ([]time.Time, error)
}

// Policy decides how many slots remain on a day given the number of
// visits already booked.  Exactly two variants exist today; a future
// partial-group policy would be a third implementation rather than a
// new flag.
type Policy interface {
	Remaining(visits int) int
}

// FullPointPolicy models points where a single visit reserves the
// entire site for the day.  The first visit consumes all seats at once.
type FullPointPolicy struct {
	Seats int
}

// Remaining reports the full seat count while the day is untouched and
// zero as soon as any visit exists.
func (p FullPointPolicy) Remaining(visits int) int {
	if visits == 0 {
		return p.Seats
	}
	return 0
}

// PerSeatPolicy models points with individually bookable slots.  Each
// visit consumes one seat.
type PerSeatPolicy struct {
	Seats int
}

// Remaining returns the raw difference between seats and visits.  The
// value can go negative when a race slipped an extra visit past the
// advisory check; callers derive availability from remaining > 0, which
// treats any overbooked day as full.
func (p PerSeatPolicy) Remaining(visits int) int {
	return p.Seats - visits
}

// PolicyFor selects the policy variant for a capacity configuration.
func PolicyFor(cap Capacity) Policy {
	if cap.FullSpaceBooking {
		return FullPointPolicy{Seats: cap.Seats}
	}
	return PerSeatPolicy{Seats: cap.Seats}
}

// DayAvailability is the result of a single-day capacity check.
type DayAvailability struct {
	Available      bool `json:"available"`
	RemainingSeats int  `json:"remaining_seats"`
}

// Checker answers availability questions for collection points.  It is
// stateless; every method reads the store fresh.  The current day is a
// parameter rather than a wall-clock read so the cutoff rules are
// deterministic under test.
type Checker struct {
	store Store
}

// NewChecker returns a Checker backed by the given store.
func NewChecker(store Store) *Checker {
	if store == nil {
		panic("nil store passed to NewChecker")
	}
	return &Checker{store: store}
}

// CheckDate reports whether the collection point can still be booked on
// the given date and how many slots remain.  Days on or before today
// are never bookable.  A missing point reports unavailable rather than
// an error; only store failures propagate.
func (ch *Checker) CheckDate(ctx context.Context, spaceID uint64, date, today time.Time) (DayAvailability, error) {
	day := startOfDay(date)
	if !day.After(startOfDay(today)) {
		return DayAvailability{}, nil
	}
	cap, err := ch.store.GetCapacity(ctx, spaceID)
	if errors.Is(err, ErrPointNotFound) {
		return DayAvailability{}, nil
	}
	if err != nil {
		return DayAvailability{}, err
	}
	visits, err := ch.store.CountVisits(ctx, spaceID, day, endOfDay(day))
	if err != nil {
		return DayAvailability{}, err
	}
	remaining := PolicyFor(cap).Remaining(visits)
	return DayAvailability{Available: remaining > 0, RemainingSeats: remaining}, nil
}

// MonthlyAvailability returns the bookable days of the given month as
// "YYYY-MM-DD" strings in ascending order.  Days on or before today are
// skipped.  It returns ErrPointNotFound when the point does not exist
// so callers can tell "unknown point" apart from "fully booked month".
// The whole month is computed in one call from a single range query.
func (ch *Checker) MonthlyAvailability(ctx context.Context, spaceID uint64, year int, month time.Month, today time.Time) ([]string, error) {
	cap, err := ch.store.GetCapacity(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
	last := first.AddDate(0, 1, -1)

	dates, err := ch.store.VisitDates(ctx, spaceID, first, endOfDay(last))
	if err != nil {
		return nil, err
	}
	perDay := make(map[string]int, len(dates))
	for _, d := range dates {
		perDay[d.Format(dayFormat)]++
	}

	policy := PolicyFor(cap)
	cutoff := startOfDay(today)
	open := make([]string, 0, 31)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if !day.After(cutoff) {
			continue
		}
		key := day.Format(dayFormat)
		if policy.Remaining(perDay[key]) > 0 {
			open = append(open, key)
		}
	}
	return open, nil
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay returns the last instant of t's calendar day, so that visit
// range queries use inclusive [start, end] bounds.
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
