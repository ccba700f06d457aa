package model

import "time"

// Visit records a citizen's booking of a collection point on a specific
// calendar day.  The time-of-day component of BookingDate is irrelevant;
// the column is a DATE and all comparisons use day bounds.  At most one
// visit per (space, client, day) is allowed; the booking handler
// pre-checks the rule and a unique key backstops it.
//
// Fields:
//  ID          – primary key identifier.
//  SpaceID     – booked collection point.
//  ClientID    – citizen who booked the visit.
//  BookingDate – calendar day of the visit.
//  CreatedAt   – creation timestamp.
type Visit struct {
	ID          uint64    // visits.id
	SpaceID     uint64    // visits.space_id
	ClientID    uint64    // visits.client_id
	BookingDate time.Time // visits.booking_date (DATE)
	CreatedAt   time.Time // visits.created_at
}
