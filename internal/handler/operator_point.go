package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/model"
	"github.com/smartwaste/collection-booking/internal/repository"
)

// OperatorHandler bundles repositories for operators to manage their
// collection points.  All routes require the OPERATOR role; ownership
// of individual points is verified in the repository layer.
type OperatorHandler struct {
	Points *repository.CollectionPointRepo
}

// NewOperatorHandler constructs a new OperatorHandler and panics if the
// repository is nil.
func NewOperatorHandler(points *repository.CollectionPointRepo) *OperatorHandler {
	if points == nil {
		panic("nil repository passed to NewOperatorHandler")
	}
	return &OperatorHandler{Points: points}
}

// pointReq is the JSON payload shared by create and update.
type pointReq struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Typology           string   `json:"typology"`
	PriceCents         uint32   `json:"price_cents"`
	Seats              int      `json:"seats"`
	IsFullSpaceBooking bool     `json:"is_full_space_booking"`
	Accessibility      *string  `json:"accessibility"`
	CapacityNote       *string  `json:"capacity_note"`
	WasteTypeIDs       []uint64 `json:"waste_type_ids"`
	Address            *struct {
		Street    string  `json:"street"`
		Number    *string `json:"number"`
		City      string  `json:"city"`
		Zip       string  `json:"zip"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"address"`
	Schedule *struct {
		Monday       bool    `json:"monday"`
		Tuesday      bool    `json:"tuesday"`
		Wednesday    bool    `json:"wednesday"`
		Thursday     bool    `json:"thursday"`
		Friday       bool    `json:"friday"`
		Saturday     bool    `json:"saturday"`
		Sunday       bool    `json:"sunday"`
		OpeningTime  *string `json:"opening_time"`
		ClosingTime  *string `json:"closing_time"`
		IsAlwaysOpen bool    `json:"is_always_open"`
		Notes        *string `json:"notes"`
	} `json:"schedule"`
}

// validate trims and checks the payload, returning a user-facing error
// message or "".
func (b *pointReq) validate() string {
	b.Name = strings.TrimSpace(b.Name)
	b.Typology = strings.ToUpper(strings.TrimSpace(b.Typology))
	if b.Name == "" {
		return "name is required"
	}
	if b.Seats <= 0 {
		return "seats must be positive"
	}
	if b.Address != nil {
		if strings.TrimSpace(b.Address.Street) == "" || strings.TrimSpace(b.Address.City) == "" {
			return "address street and city are required"
		}
		if b.Address.Country == "" {
			b.Address.Country = "Italy"
		}
	}
	return ""
}

func (b *pointReq) toModel(operatorID uint64) (*model.CollectionPoint, *model.Address, *model.Schedule) {
	p := &model.CollectionPoint{
		OperatorID:         operatorID,
		Name:               b.Name,
		Description:        b.Description,
		Typology:           b.Typology,
		PriceCents:         b.PriceCents,
		Seats:              b.Seats,
		IsFullSpaceBooking: b.IsFullSpaceBooking,
		Accessibility:      b.Accessibility,
		CapacityNote:       b.CapacityNote,
	}
	var addr *model.Address
	if b.Address != nil {
		addr = &model.Address{
			Street:    strings.TrimSpace(b.Address.Street),
			Number:    b.Address.Number,
			City:      strings.TrimSpace(b.Address.City),
			Zip:       strings.TrimSpace(b.Address.Zip),
			Country:   b.Address.Country,
			Latitude:  b.Address.Latitude,
			Longitude: b.Address.Longitude,
		}
	}
	var sched *model.Schedule
	if b.Schedule != nil {
		sched = &model.Schedule{
			Monday:       b.Schedule.Monday,
			Tuesday:      b.Schedule.Tuesday,
			Wednesday:    b.Schedule.Wednesday,
			Thursday:     b.Schedule.Thursday,
			Friday:       b.Schedule.Friday,
			Saturday:     b.Schedule.Saturday,
			Sunday:       b.Schedule.Sunday,
			OpeningTime:  b.Schedule.OpeningTime,
			ClosingTime:  b.Schedule.ClosingTime,
			IsAlwaysOpen: b.Schedule.IsAlwaysOpen,
			Notes:        b.Schedule.Notes,
		}
	}
	return p, addr, sched
}

// CreatePoint handles POST /v1/collection-points and creates a point
// for the authenticated operator.
func (h *OperatorHandler) CreatePoint(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body pointReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p, addr, sched := body.toModel(operatorID)
	if err := h.Points.Create(c.Request().Context(), p, addr, sched, body.WasteTypeIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create collection point"})
	}
	det, err := h.Points.GetByID(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load created point"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": det})
}

// UpdatePoint handles PUT /v1/collection-points/:id.  Ownership is
// enforced by the repository; the waste type set is replaced when
// waste_type_ids is present.
func (h *OperatorHandler) UpdatePoint(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body pointReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	p, addr, _ := body.toModel(operatorID)
	if err := h.Points.Update(ctx, id, operatorID, p, addr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection point not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if body.WasteTypeIDs != nil {
		if err := h.Points.ReplaceWasteTypes(ctx, id, operatorID, body.WasteTypeIDs); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update waste types"})
		}
	}
	det, err := h.Points.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not reload point"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}

// DeletePoint handles DELETE /v1/collection-points/:id.
func (h *OperatorHandler) DeletePoint(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Points.Delete(c.Request().Context(), id, operatorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection point not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyPoints handles GET /v1/my-collection-points and returns the
// operator's own points, inactive ones included.
func (h *OperatorHandler) ListMyPoints(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Points.ListByOperator(c.Request().Context(), operatorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
