package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/smartwaste/collection-booking/internal/model"
)

// CollectionPointRepo provides CRUD operations for collection points
// and their satellite rows (address, schedule, accepted waste types).
// Multi-table writes run inside a transaction so a point is never
// persisted without its address.
type CollectionPointRepo struct {
	db *sql.DB
}

// NewCollectionPointRepo returns a repo bound to the given database.
func NewCollectionPointRepo(db *sql.DB) *CollectionPointRepo { return &CollectionPointRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *CollectionPointRepo) DB() *sql.DB { return r.db }

// PointDetail is the full representation of a collection point returned
// to citizens: the point itself plus address, schedule, accepted waste
// types and the operator's public identity.
type PointDetail struct {
	ID                 uint64            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Typology           string            `json:"typology"`
	PriceCents         uint32            `json:"price_cents"`
	Seats              int               `json:"seats"`
	IsFullSpaceBooking bool              `json:"is_full_space_booking"`
	AvgRating          *float64          `json:"avg_rating"`
	Accessibility      *string           `json:"accessibility,omitempty"`
	CapacityNote       *string           `json:"capacity_note,omitempty"`
	OperatorID         uint64            `json:"operator_id"`
	OperatorName       string            `json:"operator_name"`
	Address            *model.Address    `json:"address,omitempty"`
	Schedule           *model.Schedule   `json:"schedule,omitempty"`
	WasteTypes         []model.WasteType `json:"waste_types"`
}

// MapMarker is the trimmed-down projection used by the map endpoint:
// just enough to place a pin and label it.
type MapMarker struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Typology  string   `json:"typology"`
	AvgRating *float64 `json:"avg_rating"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// PointFilters narrows the public listing.  Zero values mean "no
// filter".  Query matches the point name or the address city.
type PointFilters struct {
	Typology      string
	MaxPriceCents uint32
	Query         string
}

// Create inserts a collection point together with its address, schedule
// and waste type links in a single transaction.  The generated ID is
// populated on the passed point.
func (r *CollectionPointRepo) Create(ctx context.Context, p *model.CollectionPoint, addr *model.Address, sched *model.Schedule, wasteTypeIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO collection_points
	           (operator_id, name, description, typology, price_cents, seats, is_full_space_booking, accessibility, capacity_note, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`
	res, err := tx.ExecContext(ctx, q,
		p.OperatorID, p.Name, p.Description, p.Typology, p.PriceCents,
		p.Seats, p.IsFullSpaceBooking, p.Accessibility, p.CapacityNote)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if addr != nil {
		addr.CollectionPointID = p.ID
		const aq = `INSERT INTO addresses
		            (collection_point_id, street, number, city, zip, country, latitude, longitude)
		            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, aq,
			addr.CollectionPointID, addr.Street, addr.Number, addr.City,
			addr.Zip, addr.Country, addr.Latitude, addr.Longitude); err != nil {
			return err
		}
	}
	if sched != nil {
		sched.CollectionPointID = p.ID
		const sq = `INSERT INTO schedules
		            (collection_point_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday,
		             opening_time, closing_time, is_always_open, notes)
		            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, sq,
			sched.CollectionPointID, sched.Monday, sched.Tuesday, sched.Wednesday,
			sched.Thursday, sched.Friday, sched.Saturday, sched.Sunday,
			sched.OpeningTime, sched.ClosingTime, sched.IsAlwaysOpen, sched.Notes); err != nil {
			return err
		}
	}
	if err := linkWasteTypesTx(ctx, tx, p.ID, wasteTypeIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// linkWasteTypesTx inserts the join rows for the given waste type IDs
// in one statement.  An empty slice is a no-op.
func linkWasteTypesTx(ctx context.Context, tx *sql.Tx, pointID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `INSERT INTO collection_point_waste_types (collection_point_id, waste_type_id) VALUES `
	args := make([]interface{}, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, pointID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID loads one active collection point with its address, schedule
// and waste types.  It returns sql.ErrNoRows when no such point exists.
func (r *CollectionPointRepo) GetByID(ctx context.Context, id uint64) (*PointDetail, error) {
	const q = `SELECT p.id, p.name, p.description, p.typology, p.price_cents, p.seats,
	                  p.is_full_space_booking, p.avg_rating, p.accessibility, p.capacity_note,
	                  p.operator_id, u.name
	           FROM collection_points p
	           JOIN users u ON u.id = p.operator_id
	           WHERE p.id = ? AND p.is_active = 1`
	var det PointDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.Name, &det.Description, &det.Typology, &det.PriceCents, &det.Seats,
		&det.IsFullSpaceBooking, &det.AvgRating, &det.Accessibility, &det.CapacityNote,
		&det.OperatorID, &det.OperatorName,
	)
	if err != nil {
		return nil, err
	}
	if err := r.attachSatellites(ctx, &det); err != nil {
		return nil, err
	}
	return &det, nil
}

// attachSatellites fills address, schedule and waste types on an
// already scanned detail row.  Missing satellite rows are not errors.
func (r *CollectionPointRepo) attachSatellites(ctx context.Context, det *PointDetail) error {
	const aq = `SELECT id, collection_point_id, street, number, city, zip, country, latitude, longitude
	            FROM addresses WHERE collection_point_id = ?`
	var addr model.Address
	err := r.db.QueryRowContext(ctx, aq, det.ID).Scan(
		&addr.ID, &addr.CollectionPointID, &addr.Street, &addr.Number,
		&addr.City, &addr.Zip, &addr.Country, &addr.Latitude, &addr.Longitude)
	switch {
	case err == nil:
		det.Address = &addr
	case err != sql.ErrNoRows:
		return err
	}

	const sq = `SELECT id, collection_point_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday,
	                   opening_time, closing_time, is_always_open, notes
	            FROM schedules WHERE collection_point_id = ?`
	var sched model.Schedule
	err = r.db.QueryRowContext(ctx, sq, det.ID).Scan(
		&sched.ID, &sched.CollectionPointID, &sched.Monday, &sched.Tuesday, &sched.Wednesday,
		&sched.Thursday, &sched.Friday, &sched.Saturday, &sched.Sunday,
		&sched.OpeningTime, &sched.ClosingTime, &sched.IsAlwaysOpen, &sched.Notes)
	switch {
	case err == nil:
		det.Schedule = &sched
	case err != sql.ErrNoRows:
		return err
	}

	det.WasteTypes = []model.WasteType{}
	const wq = `SELECT w.id, w.name
	            FROM collection_point_waste_types j
	            JOIN waste_types w ON w.id = j.waste_type_id
	            WHERE j.collection_point_id = ?
	            ORDER BY w.name`
	rows, err := r.db.QueryContext(ctx, wq, det.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var w model.WasteType
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			return err
		}
		det.WasteTypes = append(det.WasteTypes, w)
	}
	return rows.Err()
}

// List returns all active collection points matching the filters,
// newest first.  Satellite rows are attached per point; listings are
// small enough that the N+1 pattern is acceptable here and keeps the
// query simple.
func (r *CollectionPointRepo) List(ctx context.Context, f PointFilters) ([]PointDetail, error) {
	q := `SELECT p.id, p.name, p.description, p.typology, p.price_cents, p.seats,
	             p.is_full_space_booking, p.avg_rating, p.accessibility, p.capacity_note,
	             p.operator_id, u.name
	      FROM collection_points p
	      JOIN users u ON u.id = p.operator_id
	      LEFT JOIN addresses a ON a.collection_point_id = p.id
	      WHERE p.is_active = 1`
	args := []interface{}{}
	if f.Typology != "" {
		q += " AND p.typology = ?"
		args = append(args, f.Typology)
	}
	if f.MaxPriceCents > 0 {
		q += " AND p.price_cents <= ?"
		args = append(args, f.MaxPriceCents)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q += " AND (LOWER(p.name) LIKE ? OR LOWER(a.city) LIKE ?)"
		like := "%" + strings.ToLower(s) + "%"
		args = append(args, like, like)
	}
	q += " ORDER BY p.created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]PointDetail, 0)
	for rows.Next() {
		var det PointDetail
		if err := rows.Scan(
			&det.ID, &det.Name, &det.Description, &det.Typology, &det.PriceCents, &det.Seats,
			&det.IsFullSpaceBooking, &det.AvgRating, &det.Accessibility, &det.CapacityNote,
			&det.OperatorID, &det.OperatorName,
		); err != nil {
			return nil, err
		}
		items = append(items, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if err := r.attachSatellites(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ListByOperator returns the operator's own points, including inactive
// ones, newest first.
func (r *CollectionPointRepo) ListByOperator(ctx context.Context, operatorID uint64) ([]PointDetail, error) {
	const q = `SELECT p.id, p.name, p.description, p.typology, p.price_cents, p.seats,
	                  p.is_full_space_booking, p.avg_rating, p.accessibility, p.capacity_note,
	                  p.operator_id, u.name
	           FROM collection_points p
	           JOIN users u ON u.id = p.operator_id
	           WHERE p.operator_id = ?
	           ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, operatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]PointDetail, 0)
	for rows.Next() {
		var det PointDetail
		if err := rows.Scan(
			&det.ID, &det.Name, &det.Description, &det.Typology, &det.PriceCents, &det.Seats,
			&det.IsFullSpaceBooking, &det.AvgRating, &det.Accessibility, &det.CapacityNote,
			&det.OperatorID, &det.OperatorName,
		); err != nil {
			return nil, err
		}
		items = append(items, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if err := r.attachSatellites(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ListMapMarkers returns a coordinate projection of every active point
// that has an address.  Points without coordinates cannot be placed on
// the map and are skipped.
func (r *CollectionPointRepo) ListMapMarkers(ctx context.Context) ([]MapMarker, error) {
	const q = `SELECT p.id, p.name, p.typology, p.avg_rating, a.latitude, a.longitude
	           FROM collection_points p
	           JOIN addresses a ON a.collection_point_id = p.id
	           WHERE p.is_active = 1
	           ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	markers := make([]MapMarker, 0)
	for rows.Next() {
		var m MapMarker
		if err := rows.Scan(&m.ID, &m.Name, &m.Typology, &m.AvgRating, &m.Latitude, &m.Longitude); err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// ownerOf returns the operator ID of a point regardless of its active
// flag, or sql.ErrNoRows.
func (r *CollectionPointRepo) ownerOf(ctx context.Context, id uint64) (uint64, error) {
	var operatorID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT operator_id FROM collection_points WHERE id = ?`, id).Scan(&operatorID)
	return operatorID, err
}

// Update rewrites the mutable fields of a point after verifying that it
// belongs to the given operator.  It returns sql.ErrNoRows when the
// point does not exist and ErrForbidden when it is owned by someone
// else.
func (r *CollectionPointRepo) Update(ctx context.Context, id, operatorID uint64, p *model.CollectionPoint, addr *model.Address) error {
	actual, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if actual != operatorID {
		return ErrForbidden
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE collection_points
	           SET name = ?, description = ?, typology = ?, price_cents = ?, seats = ?,
	               is_full_space_booking = ?, accessibility = ?, capacity_note = ?
	           WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q,
		p.Name, p.Description, p.Typology, p.PriceCents, p.Seats,
		p.IsFullSpaceBooking, p.Accessibility, p.CapacityNote, id); err != nil {
		return err
	}
	if addr != nil {
		// Upsert keyed on the unique collection_point_id column.
		const aq = `INSERT INTO addresses
		            (collection_point_id, street, number, city, zip, country, latitude, longitude)
		            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		            ON DUPLICATE KEY UPDATE street = VALUES(street), number = VALUES(number),
		              city = VALUES(city), zip = VALUES(zip), country = VALUES(country),
		              latitude = VALUES(latitude), longitude = VALUES(longitude)`
		if _, err := tx.ExecContext(ctx, aq,
			id, addr.Street, addr.Number, addr.City, addr.Zip,
			addr.Country, addr.Latitude, addr.Longitude); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReplaceWasteTypes resets the accepted waste types of an owned point.
func (r *CollectionPointRepo) ReplaceWasteTypes(ctx context.Context, id, operatorID uint64, wasteTypeIDs []uint64) error {
	actual, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if actual != operatorID {
		return ErrForbidden
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM collection_point_waste_types WHERE collection_point_id = ?`, id); err != nil {
		return err
	}
	if err := linkWasteTypesTx(ctx, tx, id, wasteTypeIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes an owned point.  Satellite rows, visits and reviews
// cascade via foreign keys.  Returns sql.ErrNoRows / ErrForbidden like
// Update.
func (r *CollectionPointRepo) Delete(ctx context.Context, id, operatorID uint64) error {
	actual, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if actual != operatorID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM collection_points WHERE id = ?`, id)
	return err
}

// GetCapacity returns the seats and booking policy flag of a point, the
// two columns the availability checker needs.  sql.ErrNoRows signals a
// missing point.
func (r *CollectionPointRepo) GetCapacity(ctx context.Context, id uint64) (int, bool, error) {
	var seats int
	var fullSpace bool
	err := r.db.QueryRowContext(ctx,
		`SELECT seats, is_full_space_booking FROM collection_points WHERE id = ?`,
		id).Scan(&seats, &fullSpace)
	return seats, fullSpace, err
}

// UpdateAvgRating persists the derived mean rating.  A nil avg writes
// NULL, the "no rating yet" state.
func (r *CollectionPointRepo) UpdateAvgRating(ctx context.Context, id uint64, avg *float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE collection_points SET avg_rating = ? WHERE id = ?`, avg, id)
	return err
}
