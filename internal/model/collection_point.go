package model

import "time"

// CollectionPoint represents a physical site accepting waste for
// collection.  It is the bookable resource of the application: citizens
// book visit slots against it and leave reviews.  Each point belongs to
// one operator.  This struct corresponds to a row in the
// `collection_points` table.
//
// Fields:
//  ID                 – primary key identifier.
//  OperatorID         – user ID of the operating agency.
//  Name               – display name of the point.
//  Description        – free text description.
//  Typology           – category of the point (e.g. RECYCLING, BULKY).
//  PriceCents         – price charged per visit in cents (0 = free).
//  Seats              – total daily capacity of the point.
//  IsFullSpaceBooking – when true a single visit consumes the whole
//                       point for the day instead of one seat.
//  AvgRating          – derived mean of all review ratings, one decimal
//                       place.  Nil while the point has no reviews.
//  Accessibility      – optional accessibility notes.
//  CapacityNote       – optional free text about physical capacity.
//  IsActive           – whether the point is visible to citizens.
//  CreatedAt          – timestamp when the point was created.
//  UpdatedAt          – timestamp of last update.
type CollectionPoint struct {
	ID                 uint64    // collection_points.id
	OperatorID         uint64    // collection_points.operator_id
	Name               string    // collection_points.name
	Description        string    // collection_points.description
	Typology           string    // collection_points.typology
	PriceCents         uint32    // collection_points.price_cents
	Seats              int       // collection_points.seats
	IsFullSpaceBooking bool      // collection_points.is_full_space_booking
	AvgRating          *float64  // collection_points.avg_rating (nullable)
	Accessibility      *string   // collection_points.accessibility (nullable)
	CapacityNote       *string   // collection_points.capacity_note (nullable)
	IsActive           bool      // collection_points.is_active
	CreatedAt          time.Time // collection_points.created_at
	UpdatedAt          time.Time // collection_points.updated_at
}

// Address holds the geographic location of a collection point.  Every
// point has at most one address row; latitude and longitude feed the
// map endpoint.
//
// Fields:
//  ID                – primary key identifier.
//  CollectionPointID – owning collection point.
//  Street            – street name.
//  Number            – building number (nil when unknown).
//  City              – city name.
//  Zip               – postal code.
//  Country           – country name.
//  Latitude          – WGS84 latitude.
//  Longitude         – WGS84 longitude.
type Address struct {
	ID                uint64  // addresses.id
	CollectionPointID uint64  // addresses.collection_point_id
	Street            string  // addresses.street
	Number            *string // addresses.number (nullable)
	City              string  // addresses.city
	Zip               string  // addresses.zip
	Country           string  // addresses.country
	Latitude          float64 // addresses.latitude
	Longitude         float64 // addresses.longitude
}

// Schedule describes the weekly opening pattern of a collection point.
// A point without a schedule row is assumed always open.
//
// Fields:
//  ID                – primary key identifier.
//  CollectionPointID – owning collection point.
//  Monday..Sunday    – whether the point opens on that weekday.
//  OpeningTime       – opening time as "HH:MM" (nil if unspecified).
//  ClosingTime       – closing time as "HH:MM" (nil if unspecified).
//  IsAlwaysOpen      – overrides the weekday flags when true.
//  Notes             – optional free text shown to citizens.
type Schedule struct {
	ID                uint64  // schedules.id
	CollectionPointID uint64  // schedules.collection_point_id
	Monday            bool    // schedules.monday
	Tuesday           bool    // schedules.tuesday
	Wednesday         bool    // schedules.wednesday
	Thursday          bool    // schedules.thursday
	Friday            bool    // schedules.friday
	Saturday          bool    // schedules.saturday
	Sunday            bool    // schedules.sunday
	OpeningTime       *string // schedules.opening_time (nullable)
	ClosingTime       *string // schedules.closing_time (nullable)
	IsAlwaysOpen      bool    // schedules.is_always_open
	Notes             *string // schedules.notes (nullable)
}

// WasteType is a kind of waste a collection point accepts (paper,
// glass, electronics, ...).  Points and waste types form an n:m
// relation through the collection_point_waste_types join table.
type WasteType struct {
	ID   uint64 // waste_types.id
	Name string // waste_types.name
}
