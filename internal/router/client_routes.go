package router

import (
	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/handler"
	"github.com/smartwaste/collection-booking/internal/middleware"
)

// RegisterClient registers citizen-scoped endpoints under /v1.  All
// routes require a valid JWT and the CLIENT role.  Citizens book visits,
// manage their own bookings and reviews, and edit their profile.
func RegisterClient(e *echo.Echo, b *handler.BookingHandler, r *handler.ReviewHandler, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CLIENT"),
	)

	g.POST("/bookings", b.CreateBookings)
	g.GET("/my-bookings", b.ListBookings)
	g.DELETE("/bookings/:id", b.DeleteBooking)

	g.POST("/reviews", r.CreateReview)
	g.DELETE("/reviews/:id", r.DeleteReview)

	g.GET("/profile", p.GetProfile)
	g.PUT("/profile", p.UpdateProfile)
}
