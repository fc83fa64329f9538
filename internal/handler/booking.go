package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/booking"
	"github.com/mycine/api/internal/middleware"
	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/queue"
	"github.com/mycine/api/internal/repository"
	queue_publisher "github.com/mycine/api/internal/service"
)

// BookingHandler serves the authenticated booking flow on top of the
// ledger.  After a successful creation or cancellation it publishes a
// broker event in the background; broker failures never fail the
// request.
type BookingHandler struct {
	Ledger     *booking.Ledger
	Screenings *repository.ScreeningRepo
	Cinemas    *repository.CinemaRepo
	Movies     *repository.MovieRepo
}

func NewBookingHandler(l *booking.Ledger, scr *repository.ScreeningRepo, cin *repository.CinemaRepo, mov *repository.MovieRepo) *BookingHandler {
	return &BookingHandler{Ledger: l, Screenings: scr, Cinemas: cin, Movies: mov}
}

type createBookingReq struct {
	ScreeningID        uint64               `json:"screening_id"`
	Seats              []string             `json:"seats"`
	Snacks             []booking.SnackOrder `json:"snacks"`
	ExpectedTotalCents uint32               `json:"expected_total_cents"`
}

// Create books the requested seats and snacks for the caller.  On a
// seat conflict the response lists the exact blocking seats with 409.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ScreeningID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "screening_id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Ledger.Create(ctx, booking.CreateRequest{
		UserID:             middleware.UserID(c),
		ScreeningID:        req.ScreeningID,
		SeatIDs:            req.Seats,
		Snacks:             req.Snacks,
		ExpectedTotalCents: req.ExpectedTotalCents,
	})
	if err != nil {
		return writeError(c, err)
	}

	go h.publishConfirmed(b)

	return c.JSON(http.StatusCreated, b)
}

// publishConfirmed enriches the booking with display names and emits
// the booking.confirmed event.  Runs detached from the request.
func (h *BookingHandler) publishConfirmed(b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		Reference:        b.Reference,
		UserID:           b.UserID,
		ScreeningID:      b.ScreeningID,
		SeatIDs:          b.SeatIDs(),
		SnackCount:       len(b.Snacks),
		TotalAmountCents: b.TotalAmountCents,
		ConfirmedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if sc, err := h.Screenings.GetScreening(ctx, b.ScreeningID); err == nil {
		ev.CinemaID = sc.CinemaID
		ev.RoomName = sc.RoomName
		ev.StartsAt = sc.StartsAt.Format(time.RFC3339)
		if cin, err := h.Cinemas.GetByID(ctx, sc.CinemaID); err == nil {
			ev.CinemaName = cin.Name
		}
		if mov, err := h.Movies.GetByID(ctx, sc.MovieID); err == nil {
			ev.MovieTitle = mov.Title
		}
	}
	_ = queue_publisher.PublishBookingConfirmed(ctx, ev)
}

// Get returns one booking, visible to its owner or an admin.  The
// status is folded to completed when the screening has started.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Ledger.Get(ctx, id, middleware.UserID(c), middleware.Role(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.withDisplayStatus(ctx, b))
}

// ListMine returns the caller's bookings, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Ledger.ListForUser(ctx, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, h.withDisplayStatus(ctx, b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Cancel voids a booking and frees its seats, allowed for the owner or
// an admin strictly before the screening starts.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Ledger.Cancel(ctx, id, middleware.UserID(c), middleware.Role(c))
	if err != nil {
		return writeError(c, err)
	}

	go func(b *model.Booking) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
			BookingID:   b.ID,
			Reference:   b.Reference,
			UserID:      b.UserID,
			ScreeningID: b.ScreeningID,
			SeatIDs:     b.SeatIDs(),
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
	}(b)

	return c.JSON(http.StatusOK, b)
}

// withDisplayStatus folds the implicit completed status into the
// response copy.
func (h *BookingHandler) withDisplayStatus(ctx context.Context, b *model.Booking) *model.Booking {
	if b.Status != model.BookingConfirmed {
		return b
	}
	sc, err := h.Screenings.GetScreening(ctx, b.ScreeningID)
	if err != nil {
		return b
	}
	cp := *b
	cp.Status = b.DisplayStatus(sc.StartsAt, time.Now().UTC())
	return &cp
}
