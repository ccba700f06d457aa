package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/availability"
	"github.com/smartwaste/collection-booking/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: collection
// point listings, point details, reviews, the map projection and the
// monthly availability calendar.  No JWT middleware is applied to these
// routes so guests can explore points before registering.
type PublicHandler struct {
	Points  *repository.CollectionPointRepo
	Reviews *repository.ReviewRepo
	Checker *availability.Checker
}

// NewPublicHandler constructs a PublicHandler with the provided
// dependencies.  All must be non-nil.
func NewPublicHandler(points *repository.CollectionPointRepo, reviews *repository.ReviewRepo, checker *availability.Checker) *PublicHandler {
	if points == nil || reviews == nil || checker == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Points: points, Reviews: reviews, Checker: checker}
}

// ListPoints handles GET /v1/collection-points.  Optional query
// parameters: typology, max_price (cents) and q (matches name or city).
func (h *PublicHandler) ListPoints(c echo.Context) error {
	filters := repository.PointFilters{
		Typology: strings.TrimSpace(c.QueryParam("typology")),
		Query:    strings.TrimSpace(c.QueryParam("q")),
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price"})
		}
		filters.MaxPriceCents = uint32(n)
	}
	items, err := h.Points.List(c.Request().Context(), filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load collection points"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPoint handles GET /v1/collection-points/:id and returns one point
// with address, schedule and waste types.
func (h *PublicHandler) GetPoint(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	det, err := h.Points.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection point not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load collection point"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}

// ListPointReviews handles GET /v1/collection-points/:id/reviews.
func (h *PublicHandler) ListPointReviews(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.Reviews.ListBySpace(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reviews"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MonthlyAvailability handles
// GET /v1/collection-points/:id/availability?year=YYYY&month=M.
// It returns the bookable days of the month as "YYYY-MM-DD" strings in
// ascending order.  A missing point yields 404; a point with no open
// days yields an empty list.  Calendar UIs call this per rendered
// month, so the route sits behind the response cache middleware.
func (h *PublicHandler) MonthlyAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 2000 || year > 2200 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month"})
	}

	dates, err := h.Checker.MonthlyAvailability(
		c.Request().Context(), id, year, time.Month(month), time.Now())
	if err != nil {
		if errors.Is(err, availability.ErrPointNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection point not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"space_id":        id,
		"year":            year,
		"month":           month,
		"available_dates": dates,
	})
}

// CheckDate handles
// GET /v1/collection-points/:id/availability/check?date=YYYY-MM-DD.
// Booking forms use it to validate a single selected day before
// submitting.  A missing point reports unavailable rather than 404,
// matching the booking-time check.
func (h *PublicHandler) CheckDate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	parsed, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	// Rebuild in the server's zone so the today cutoff compares day to
	// day instead of UTC midnight to local midnight.
	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.Local)
	day, err := h.Checker.CheckDate(c.Request().Context(), id, date, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	return c.JSON(http.StatusOK, day)
}

// MapMarkers handles GET /v1/map and returns the coordinates of every
// active point for the map view.
func (h *PublicHandler) MapMarkers(c echo.Context) error {
	markers, err := h.Points.ListMapMarkers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load map markers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": markers})
}
