package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/smartwaste/collection-booking/internal/model"
)

// VisitRepo provides persistence for visit bookings.  Booking dates are
// stored in a DATE column; range queries use inclusive day bounds
// computed by the caller.
type VisitRepo struct {
	db *sql.DB
}

// NewVisitRepo returns a new VisitRepo bound to the given database.
func NewVisitRepo(db *sql.DB) *VisitRepo { return &VisitRepo{db: db} }

// VisitDetail is a visit joined with its collection point, returned to
// citizens listing their own bookings.
type VisitDetail struct {
	ID          uint64 `json:"id"`
	SpaceID     uint64 `json:"space_id"`
	PointName   string `json:"point_name"`
	BookingDate string `json:"booking_date"`
	CreatedAt   string `json:"created_at"`
}

// Create inserts a visit row and populates the generated ID.  A
// duplicate-key violation on (space_id, client_id, booking_date) maps
// to ErrDuplicateVisit.
func (r *VisitRepo) Create(ctx context.Context, v *model.Visit) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO visits (space_id, client_id, booking_date) VALUES (?, ?, ?)`,
		v.SpaceID, v.ClientID, v.BookingDate.Format("2006-01-02"))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateVisit
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// CountByRange returns the number of visits for a point whose booking
// date lies within [from, to].
func (r *VisitRepo) CountByRange(ctx context.Context, spaceID uint64, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits WHERE space_id = ? AND booking_date BETWEEN ? AND ?`,
		spaceID, from.Format("2006-01-02"), to.Format("2006-01-02")).Scan(&n)
	return n, err
}

// DatesByRange returns the booking dates of all visits for a point
// within [from, to], one entry per visit.
func (r *VisitRepo) DatesByRange(ctx context.Context, spaceID uint64, from, to time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT booking_date FROM visits WHERE space_id = ? AND booking_date BETWEEN ? AND ?`,
		spaceID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ExistsForClientOnDay reports whether the client already booked the
// point on the given calendar day.  This is the soft one-visit-per-day
// pre-check; it runs before the insert and is not race proof.
func (r *VisitRepo) ExistsForClientOnDay(ctx context.Context, spaceID, clientID uint64, day time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM visits WHERE space_id = ? AND client_id = ? AND booking_date = ? LIMIT 1`,
		spaceID, clientID, day.Format("2006-01-02")).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByClient returns the client's visits joined with point names,
// soonest booking first.
func (r *VisitRepo) ListByClient(ctx context.Context, clientID uint64) ([]VisitDetail, error) {
	const q = `SELECT v.id, v.space_id, p.name, v.booking_date, v.created_at
	           FROM visits v
	           JOIN collection_points p ON p.id = v.space_id
	           WHERE v.client_id = ?
	           ORDER BY v.booking_date ASC`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]VisitDetail, 0)
	for rows.Next() {
		var d VisitDetail
		var booked, created time.Time
		if err := rows.Scan(&d.ID, &d.SpaceID, &d.PointName, &booked, &created); err != nil {
			return nil, err
		}
		d.BookingDate = booked.Format("2006-01-02")
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		items = append(items, d)
	}
	return items, rows.Err()
}

// DeleteForClient removes a visit after verifying ownership.  It
// returns sql.ErrNoRows when the visit does not exist and ErrForbidden
// when it belongs to a different client.
func (r *VisitRepo) DeleteForClient(ctx context.Context, visitID, clientID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT client_id FROM visits WHERE id = ?`, visitID).Scan(&owner)
	if err != nil {
		return err
	}
	if owner != clientID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM visits WHERE id = ?`, visitID)
	return err
}
