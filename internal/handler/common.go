// Package handler contains the HTTP handlers of the API.  Handlers
// bind and validate input, delegate to the booking ledger, inventory
// engine and repositories, and translate domain errors into JSON
// responses.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/model"
)

// dbTimeout bounds every database call issued from a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// writeError maps domain errors to HTTP responses.  Seat conflicts list
// the exact blocking seats so clients can refresh just those.
func writeError(c echo.Context, err error) error {
	var seatErr *model.SeatsUnavailableError
	if errors.As(err, &seatErr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "seats unavailable",
			"seats": seatErr.SeatIDs,
		})
	}
	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": valErr.Reason})
	}
	switch {
	case errors.Is(err, model.ErrScreeningNotFound),
		errors.Is(err, model.ErrBookingNotFound),
		errors.Is(err, model.ErrSnackNotFound),
		errors.Is(err, model.ErrCinemaNotFound),
		errors.Is(err, model.ErrMovieNotFound),
		errors.Is(err, model.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, model.ErrCancellationWindowClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cancellation window closed"})
	case errors.Is(err, model.ErrScreeningHasBookings):
		return c.JSON(http.StatusConflict, echo.Map{"error": "screening has active bookings"})
	case errors.Is(err, model.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
