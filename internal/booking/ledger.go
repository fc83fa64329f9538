// Package booking orchestrates the purchase flow: validate the snack
// order, claim the seats through the inventory engine, snapshot prices
// and persist the booking under a unique reference.  The ledger holds
// no state of its own; every decision that must survive concurrent
// callers is delegated to the inventory engine and the stores.
package booking

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/mycine/api/internal/inventory"
	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/pricing"
)

// maxReferenceAttempts bounds the collision retry loop when inserting a
// booking.  With an 8-character code over a 32-symbol alphabet the loop
// effectively never runs more than once.
const maxReferenceAttempts = 5

// maxSnackQuantity caps a single snack line.  Nobody orders fifty
// popcorns at once; anything beyond this is a malformed request.
const maxSnackQuantity = 50

// ScreeningStore loads screenings for the booking flow.
type ScreeningStore interface {
	GetScreening(ctx context.Context, id uint64) (*model.Screening, error)
}

// SnackCatalog resolves snack ids to their current catalog entries.
type SnackCatalog interface {
	GetSnack(ctx context.Context, id uint64) (*model.Snack, error)
}

// BookingStore persists bookings.  CreateBooking must fail with
// model.ErrReferenceExists when the reference is already taken, and
// CancelBooking must release the seats and mark the booking cancelled
// in one atomic step.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *model.Booking) (uint64, error)
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uint64) ([]*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID, screeningID uint64, seatIDs []string) error
}

// SnackOrder is one requested snack line before validation.
type SnackOrder struct {
	SnackID  uint64 `json:"snack_id"`
	Quantity uint32 `json:"quantity"`
}

// CreateRequest carries everything needed to create a booking.
// ExpectedTotalCents is advisory: when non-zero and different from the
// server-side total the mismatch is logged, but the server total wins.
type CreateRequest struct {
	UserID             uint64
	ScreeningID        uint64
	SeatIDs            []string
	Snacks             []SnackOrder
	ExpectedTotalCents uint32
}

// Ledger runs the booking lifecycle on top of the inventory engine and
// the persistence stores.
type Ledger struct {
	screenings ScreeningStore
	snacks     SnackCatalog
	bookings   BookingStore
	inv        *inventory.Engine

	now func() time.Time
}

// NewLedger wires a Ledger.  The clock defaults to time.Now and is
// injectable for cancellation cutoff tests.
func NewLedger(screenings ScreeningStore, snacks SnackCatalog, bookings BookingStore, inv *inventory.Engine) *Ledger {
	return &Ledger{
		screenings: screenings,
		snacks:     snacks,
		bookings:   bookings,
		inv:        inv,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the ledger's clock and returns the ledger.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// buildSnackLines validates the snack order against the catalog and
// snapshots names and unit prices.  Any unknown or out-of-stock snack
// or non-positive quantity fails the whole request; this runs before
// any seat is touched so a bad snack line never strands claimed seats.
func (l *Ledger) buildSnackLines(ctx context.Context, orders []SnackOrder) ([]model.SnackLine, error) {
	lines := make([]model.SnackLine, 0, len(orders))
	for _, o := range orders {
		if o.Quantity == 0 {
			return nil, model.Validationf("snack %d has zero quantity", o.SnackID)
		}
		if o.Quantity > maxSnackQuantity {
			return nil, model.Validationf("snack %d quantity %d exceeds the maximum of %d", o.SnackID, o.Quantity, maxSnackQuantity)
		}
		s, err := l.snacks.GetSnack(ctx, o.SnackID)
		if err != nil {
			if errors.Is(err, model.ErrSnackNotFound) {
				return nil, model.Validationf("unknown snack id %d", o.SnackID)
			}
			return nil, err
		}
		if !s.InStock {
			return nil, model.Validationf("snack %q is out of stock", s.Name)
		}
		lines = append(lines, model.SnackLine{
			SnackID:    s.ID,
			Name:       s.Name,
			Quantity:   o.Quantity,
			PriceCents: s.PriceCents,
		})
	}
	return lines, nil
}

// Create runs the full purchase: load the screening, validate seat ids
// against its map, validate and price the snack order, atomically claim
// the seats as sold, then persist the booking snapshot.  If persisting
// fails after the claim succeeded the seats are released again, so a
// storage failure never leaks sold seats.
func (l *Ledger) Create(ctx context.Context, req CreateRequest) (*model.Booking, error) {
	sc, err := l.screenings.GetScreening(ctx, req.ScreeningID)
	if err != nil {
		return nil, err
	}
	for _, id := range req.SeatIDs {
		if sc.Seat(id) == nil {
			return nil, model.Validationf("screening %d has no seat %q", sc.ID, id)
		}
	}

	snackLines, err := l.buildSnackLines(ctx, req.Snacks)
	if err != nil {
		return nil, err
	}

	// The stored total is 32-bit; bound the order before any seat is
	// claimed so an oversized cart can never wrap it.
	ceiling := pricing.Total(nil, snackLines) + uint64(len(req.SeatIDs))*uint64(sc.PriceCents)
	if ceiling > math.MaxUint32 {
		return nil, model.Validationf("order total %d cents exceeds the supported maximum", ceiling)
	}

	claimed, err := l.inv.Claim(ctx, sc.ID, req.UserID, req.SeatIDs, model.SeatSold)
	if err != nil {
		return nil, err
	}

	seatLines := make([]model.SeatLine, 0, len(claimed))
	for _, seat := range claimed {
		seatLines = append(seatLines, model.SeatLine{
			SeatID:     seat.ID,
			Row:        seat.Row,
			Number:     seat.Number,
			PriceCents: sc.PriceCents,
		})
	}

	total := uint32(pricing.Total(seatLines, snackLines))
	if req.ExpectedTotalCents != 0 && req.ExpectedTotalCents != total {
		log.Printf("booking: client total %d differs from computed total %d (user=%d screening=%d)",
			req.ExpectedTotalCents, total, req.UserID, sc.ID)
	}

	b := &model.Booking{
		UserID:           req.UserID,
		ScreeningID:      sc.ID,
		Seats:            seatLines,
		Snacks:           snackLines,
		TotalAmountCents: total,
		PaymentStatus:    model.PaymentCompleted,
		Status:           model.BookingConfirmed,
		CreatedAt:        l.now(),
	}

	if err := l.persistWithReference(ctx, b); err != nil {
		if relErr := l.inv.Release(ctx, sc.ID, req.SeatIDs); relErr != nil {
			log.Printf("booking: release after failed insert: %v (screening=%d seats=%v)", relErr, sc.ID, req.SeatIDs)
		}
		return nil, err
	}
	return b, nil
}

// persistWithReference generates a reference and inserts the booking,
// retrying with a fresh code on a reference collision.
func (l *Ledger) persistWithReference(ctx context.Context, b *model.Booking) error {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := NewReference()
		if err != nil {
			return err
		}
		b.Reference = ref
		id, err := l.bookings.CreateBooking(ctx, b)
		if err == nil {
			b.ID = id
			return nil
		}
		if !errors.Is(err, model.ErrReferenceExists) {
			return err
		}
	}
	return errors.New("booking: exhausted reference attempts")
}

// Get returns a booking visible to the caller: the owner or an admin.
func (l *Ledger) Get(ctx context.Context, bookingID, callerID uint64, callerRole string) (*model.Booking, error) {
	b, err := l.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != callerID && callerRole != model.RoleAdmin {
		return nil, model.ErrForbidden
	}
	return b, nil
}

// ListForUser returns the caller's bookings, newest first.
func (l *Ledger) ListForUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	return l.bookings.ListBookingsByUser(ctx, userID)
}

// Cancel voids a booking and returns its seats to available, in one
// atomic store operation.  Only the owner or an admin may cancel, and
// only strictly before the screening starts.  Cancelling an already
// cancelled booking is a no-op so retried requests stay safe.
func (l *Ledger) Cancel(ctx context.Context, bookingID, callerID uint64, callerRole string) (*model.Booking, error) {
	b, err := l.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != callerID && callerRole != model.RoleAdmin {
		return nil, model.ErrForbidden
	}
	if b.Status == model.BookingCancelled {
		return b, nil
	}

	sc, err := l.screenings.GetScreening(ctx, b.ScreeningID)
	if err != nil {
		return nil, err
	}
	if !l.now().Before(sc.StartsAt) {
		return nil, model.ErrCancellationWindowClosed
	}

	if err := l.bookings.CancelBooking(ctx, b.ID, b.ScreeningID, b.SeatIDs()); err != nil {
		return nil, err
	}
	b.Status = model.BookingCancelled
	return b, nil
}
