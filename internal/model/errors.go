// Package model defines the domain types shared by every layer of the
// service, along with the sentinel errors that let handlers map failure
// modes to distinguishable HTTP responses: a seat conflict, a missing
// resource, an ownership violation and a closed cancellation window must
// never collapse into one generic failure.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrScreeningNotFound is returned when a screening id does not exist.
var ErrScreeningNotFound = errors.New("screening not found")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrSnackNotFound is returned when a snack id does not exist in the
// catalog.  The booking flow wraps it into a ValidationError so that an
// unknown snack fails the whole purchase instead of being dropped.
var ErrSnackNotFound = errors.New("snack not found")

// ErrCinemaNotFound is returned when a cinema id does not exist.
var ErrCinemaNotFound = errors.New("cinema not found")

// ErrMovieNotFound is returned when a movie id does not exist.
var ErrMovieNotFound = errors.New("movie not found")

// ErrUserNotFound is returned when a user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned on registration with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller is neither the owner of the
// resource nor an admin.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrCancellationWindowClosed is returned when a cancellation arrives at
// or after the screening's start time.  Handlers translate it into
// HTTP 409 so clients can tell "too late" apart from "not yours".
var ErrCancellationWindowClosed = errors.New("cancellation window closed")

// ErrReferenceExists is returned by booking stores when the generated
// booking reference collides with an existing one.  The ledger retries
// transparently; callers never see this error.
var ErrReferenceExists = errors.New("booking reference already exists")

// ErrScreeningHasBookings is returned when deleting a screening that is
// still referenced by non-cancelled bookings.
var ErrScreeningHasBookings = errors.New("screening has active bookings")

// SeatsUnavailableError reports the exact seats that blocked an
// all-or-nothing claim.  No partial transition has been applied when
// this error is returned.
type SeatsUnavailableError struct {
	SeatIDs []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatIDs, ", "))
}

// ValidationError marks a malformed request: an empty or duplicated
// seat set, a seat id the screening does not have, or an unknown snack.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
