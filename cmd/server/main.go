package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mycine/api/internal/booking"
	"github.com/mycine/api/internal/config"
	"github.com/mycine/api/internal/database"
	"github.com/mycine/api/internal/handler"
	"github.com/mycine/api/internal/inventory"
	"github.com/mycine/api/internal/middleware"
	"github.com/mycine/api/internal/queue"
	"github.com/mycine/api/internal/repository"
	"github.com/mycine/api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: when it is down the cache and rate limiter
	// become pass-throughs.
	rdb := config.NewRedisClient()
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	movies := repository.NewMovieRepo(db)
	screenings := repository.NewScreeningRepo(db)
	snacks := repository.NewSnackRepo(db)
	bookings := repository.NewBookingRepo(db)

	inv := inventory.New(repository.NewSeatInventoryRepo(db))
	ledger := booking.NewLedger(screenings, snacks, bookings, inv)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(cinemas, movies, screenings, snacks, inv)
	bookingH := handler.NewBookingHandler(ledger, screenings, cinemas, movies)
	holdH := handler.NewHoldHandler(inv)
	adminH := handler.NewAdminHandler(bookings, users)
	adminScrH := handler.NewAdminScreeningHandler(cinemas, movies, screenings)
	adminSnackH := handler.NewAdminSnackHandler(snacks)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, cacheMW)
	router.RegisterCustomer(e, bookingH, holdH, cfg.JWTSecret, limitMW)
	router.RegisterAdmin(e, adminH, adminScrH, adminSnackH, cfg.JWTSecret)

	// The consumer reconnects on its own; a dead broker never blocks
	// the API.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("queue consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
