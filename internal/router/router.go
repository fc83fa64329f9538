// Package router registers the HTTP routes of the API and binds them
// to their middleware: JWT auth with role enforcement on the private
// surface, Redis response caching on cache-safe public reads.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/handler"
	"github.com/mycine/api/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication at all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login, refresh
// and logout live under /v1/auth without a JWT; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh_token body or a bearer token, so
	// it is reachable both with and without the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse surface.  Static
// catalog reads sit behind the response cache; anything carrying live
// availability (screening lists with seat counts, the seat map) does
// not, because stale availability would mislead the seat picker.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/cinemas", p.ListCinemas, cache)
	e.GET("/v1/cinemas/:id", p.GetCinema, cache)
	e.GET("/v1/cinemas/:id/movies/:movieId/screenings", p.ListCinemaMovieScreenings)
	e.GET("/v1/screenings", p.ListScreenings)
	e.GET("/v1/screenings/:id", p.GetScreening)
	e.GET("/v1/snacks", p.ListSnacks, cache)
	e.GET("/v1/snacks/:id", p.GetSnack, cache)

	e.GET("/v1/screenings/:id/seats", p.GetSeatMap)
}
