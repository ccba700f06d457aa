// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/handler"
	"github.com/smartwaste/collection-booking/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication at all.
// Currently this is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register, login,
// refresh and logout live under /v1/auth and need no session; /v1/me is
// protected by the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, no JWT required.  A
	// client with an expired access token can still end its session.
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CLIENT", "OPERATOR"),
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: point
// listing and detail, reviews, availability lookups and map markers.
// Guests use these to find a collection point before registering.  The
// response cache is applied here and nowhere else: cache keys do not
// include the user, so caching authenticated routes would cross
// sessions.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/collection-points", p.ListPoints)
	g.GET("/collection-points/:id", p.GetPoint)
	g.GET("/collection-points/:id/reviews", p.ListPointReviews)
	g.GET("/collection-points/:id/availability", p.MonthlyAvailability)
	g.GET("/collection-points/:id/availability/check", p.CheckDate)
	g.GET("/map", p.MapMarkers)
}
