package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/handler"
	"github.com/mycine/api/internal/middleware"
	"github.com/mycine/api/internal/model"
)

// RegisterCustomer registers the booking and seat-hold surface.  Admins
// pass the role check too so they can book and cancel like anyone else.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, hold *handler.HoldHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	if limit != nil {
		g.Use(limit)
	}

	g.POST("/bookings", b.Create)
	g.GET("/bookings/me", b.ListMine)
	g.GET("/bookings/:id", b.Get)
	g.PUT("/bookings/:id/cancel", b.Cancel)

	g.PUT("/screenings/:id/seats", hold.Hold)
	g.DELETE("/screenings/:id/seats", hold.Release)
}
