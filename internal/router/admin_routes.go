package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/handler"
	"github.com/mycine/api/internal/middleware"
	"github.com/mycine/api/internal/model"
)

// RegisterAdmin registers the management surface: dashboard and user
// management under /v1/admin, catalog mutations on the resource paths
// themselves with the ADMIN role required.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, scr *handler.AdminScreeningHandler, sn *handler.AdminSnackHandler, jwtSecret string) {
	admin := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.GET("/dashboard", a.Dashboard)
	admin.GET("/bookings", a.ListBookings)
	admin.GET("/users", a.ListUsers)
	admin.PUT("/users/:id/block", a.BlockUser)
	admin.DELETE("/users/:id", a.DeleteUser)
	admin.POST("/cinemas", scr.CreateCinema)
	admin.GET("/snacks", sn.List)

	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/screenings", scr.CreateScreening)
	g.PUT("/screenings/:id", scr.UpdateScreening)
	g.DELETE("/screenings/:id", scr.DeleteScreening)
	g.POST("/snacks", sn.Create)
	g.PUT("/snacks/:id", sn.Update)
	g.DELETE("/snacks/:id", sn.Delete)
}
