package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/model"
	"github.com/smartwaste/collection-booking/internal/rating"
	"github.com/smartwaste/collection-booking/internal/repository"
)

// ReviewHandler serves review creation and deletion for citizens.  Both
// mutations recompute the point's aggregate rating before reporting
// success: when the recomputation fails the mutation itself is reported
// as failed so the stored aggregate never silently drifts from the
// review set.
type ReviewHandler struct {
	Points     *repository.CollectionPointRepo
	Reviews    *repository.ReviewRepo
	Recomputer *rating.Recomputer
}

// NewReviewHandler constructs a ReviewHandler with the provided
// dependencies.  All must be non-nil.
func NewReviewHandler(points *repository.CollectionPointRepo, reviews *repository.ReviewRepo, rec *rating.Recomputer) *ReviewHandler {
	if points == nil || reviews == nil || rec == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	return &ReviewHandler{Points: points, Reviews: reviews, Recomputer: rec}
}

// CreateReview handles POST /v1/reviews.  One review per user per
// point; a pre-check answers early and the unique key catches races.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SpaceID uint64  `json:"space_id"`
		Rating  int     `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SpaceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "space_id is required"})
	}
	if body.Rating < 1 || body.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	if body.Comment != nil {
		trimmed := strings.TrimSpace(*body.Comment)
		if trimmed == "" {
			body.Comment = nil
		} else {
			body.Comment = &trimmed
		}
	}

	ctx := c.Request().Context()
	if _, err := h.Points.GetByID(ctx, body.SpaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection point not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load collection point"})
	}
	exists, err := h.Reviews.ExistsForUser(ctx, body.SpaceID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing review"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already reviewed this collection point"})
	}

	review := model.Review{SpaceID: body.SpaceID, UserID: userID, Rating: body.Rating, Comment: body.Comment}
	if err := h.Reviews.Create(ctx, &review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already reviewed this collection point"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create review"})
	}
	if err := h.Recomputer.Recompute(ctx, body.SpaceID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update average rating"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":       review.ID,
		"space_id": review.SpaceID,
		"rating":   review.Rating,
		"comment":  review.Comment,
	})
}

// DeleteReview handles DELETE /v1/reviews/:id.  Only the author can
// delete a review.  Returns 204 on success, 404 when the review does
// not exist and 403 when it belongs to someone else.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	ctx := c.Request().Context()
	spaceID, err := h.Reviews.DeleteForUser(ctx, reviewID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete review"})
	}
	if err := h.Recomputer.Recompute(ctx, spaceID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update average rating"})
	}
	return c.NoContent(http.StatusNoContent)
}
