package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/availability"
	"github.com/smartwaste/collection-booking/internal/model"
	"github.com/smartwaste/collection-booking/internal/queue"
	"github.com/smartwaste/collection-booking/internal/repository"
	queue_publisher "github.com/smartwaste/collection-booking/internal/service"
)

// BookingHandler serves the citizen-facing booking endpoints.  All
// methods assume JWT authentication and the CLIENT role were enforced
// by middleware.  The availability check before each insert is
// advisory: a concurrent request can still slip an extra visit past it,
// which is why overbooked days report zero remaining seats afterwards
// instead of failing loudly.
type BookingHandler struct {
	Points  *repository.CollectionPointRepo
	Visits  *repository.VisitRepo
	Checker *availability.Checker
}

// NewBookingHandler constructs a BookingHandler with the provided
// dependencies.  All must be non-nil.
func NewBookingHandler(points *repository.CollectionPointRepo, visits *repository.VisitRepo, checker *availability.Checker) *BookingHandler {
	if points == nil || visits == nil || checker == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Points: points, Visits: visits, Checker: checker}
}

// CreateBookings handles POST /v1/bookings.  The body carries a space
// ID and one or more dates; every date is pre-checked for duplicates
// and availability before any insert, and the whole request is rejected
// on the first bad date.  On success a visit.booked event is published
// per created visit; publish failures are logged inside the publisher
// and do not fail the booking.
func (h *BookingHandler) CreateBookings(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SpaceID      uint64   `json:"space_id"`
		BookingDates []string `json:"booking_dates"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SpaceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "space_id is required"})
	}
	if len(body.BookingDates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no dates selected"})
	}

	// Parse and deduplicate up front so one bad date fails the request
	// before anything is written.
	days := make([]time.Time, 0, len(body.BookingDates))
	seen := make(map[string]struct{}, len(body.BookingDates))
	for _, raw := range body.BookingDates {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date " + raw + ", expected YYYY-MM-DD"})
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		days = append(days, time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.Local))
	}

	ctx := c.Request().Context()
	now := time.Now()
	created := make([]model.Visit, 0, len(days))
	for _, day := range days {
		exists, err := h.Visits.ExistsForClientOnDay(ctx, body.SpaceID, clientID, day)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing visits"})
		}
		if exists {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "visit already exists for date " + day.Format("2006-01-02"),
			})
		}
		avail, err := h.Checker.CheckDate(ctx, body.SpaceID, day, now)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
		}
		if !avail.Available {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "date " + day.Format("2006-01-02") + " is not available",
			})
		}
		visit := model.Visit{SpaceID: body.SpaceID, ClientID: clientID, BookingDate: day}
		if err := h.Visits.Create(ctx, &visit); err != nil {
			if errors.Is(err, repository.ErrDuplicateVisit) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": "visit already exists for date " + day.Format("2006-01-02"),
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create visit"})
		}
		created = append(created, visit)
	}

	if point, err := h.Points.GetByID(ctx, body.SpaceID); err == nil {
		for _, v := range created {
			_ = queue_publisher.PublishVisitBooked(ctx, queue.VisitBookedEvent{
				VisitID:     v.ID,
				SpaceID:     v.SpaceID,
				ClientID:    v.ClientID,
				PointName:   point.Name,
				BookingDate: v.BookingDate.Format("2006-01-02"),
				BookedAt:    now.UTC().Format(time.RFC3339),
			})
		}
	}

	out := make([]echo.Map, 0, len(created))
	for _, v := range created {
		out = append(out, echo.Map{
			"id":           v.ID,
			"space_id":     v.SpaceID,
			"booking_date": v.BookingDate.Format("2006-01-02"),
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{"visits": out})
}

// ListBookings handles GET /v1/my-bookings and returns the client's
// visits, soonest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Visits.ListByClient(c.Request().Context(), clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeleteBooking handles DELETE /v1/bookings/:id.  Only the booking
// client can cancel a visit.  Returns 204 on success, 404 when the
// visit does not exist and 403 when it belongs to someone else.
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	visitID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || visitID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Visits.DeleteForClient(c.Request().Context(), visitID, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	return c.NoContent(http.StatusNoContent)
}
