package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/config"
	"github.com/smartwaste/collection-booking/internal/repository"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewProfileHandler(cfg config.Config, users *repository.UserRepo) *ProfileHandler {
	if users == nil {
		panic("nil repository passed to NewProfileHandler")
	}
	return &ProfileHandler{Cfg: cfg, Users: users}
}

// GetProfile handles GET /v1/profile.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load profile"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
}

// UpdateProfile handles PUT /v1/profile.  Name and email are updated
// together; an optional password field rotates the bcrypt hash.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Name == "" || body.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and email are required"})
	}

	ctx := c.Request().Context()
	if err := h.Users.UpdateProfile(ctx, userID, body.Name, body.Email); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}
	if body.Password != "" {
		if err := h.Users.UpdatePassword(ctx, userID, body.Password, h.Cfg.BcryptCost); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update password"})
		}
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reload profile"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
}
