package router

import (
	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/handler"
	"github.com/smartwaste/collection-booking/internal/middleware"
)

// RegisterOperator registers OPERATOR-scoped endpoints under /v1.
// All routes require a valid JWT and the OPERATOR role.  Operators
// manage their own collection points; public listing and detail are
// served by the public browse routes.
func RegisterOperator(e *echo.Echo, o *handler.OperatorHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OPERATOR"),
	)

	g.POST("/collection-points", o.CreatePoint)
	g.PUT("/collection-points/:id", o.UpdatePoint)
	g.PATCH("/collection-points/:id", o.UpdatePoint)
	g.DELETE("/collection-points/:id", o.DeletePoint)
	g.GET("/my-collection-points", o.ListMyPoints)
}
