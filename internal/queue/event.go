// Package queue defines message payloads exchanged over the message broker.
package queue

// VisitBookedEvent is published after a visit booking is persisted.
// It carries enough context for downstream consumers to log or notify
// without querying the primary database.
type VisitBookedEvent struct {
	VisitID     uint64 `json:"visit_id"`
	SpaceID     uint64 `json:"space_id"`
	ClientID    uint64 `json:"client_id"`
	PointName   string `json:"point_name"`
	BookingDate string `json:"booking_date"`
	BookedAt    string `json:"booked_at"`
}
