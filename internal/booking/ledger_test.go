package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycine/api/internal/inventory"
	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/repository"
)

var screeningStart = time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

// newTestLedger builds a ledger over the in-memory store with one
// screening (id 1, 9.50 per seat) and two snacks (popcorn in stock,
// nachos out of stock).
func newTestLedger(t *testing.T) (*Ledger, *repository.MemoryStore, *inventory.Engine) {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutScreening(&model.Screening{
		ID:         1,
		CinemaID:   1,
		MovieID:    1,
		RoomName:   "Room 1",
		StartsAt:   screeningStart,
		EndsAt:     screeningStart.Add(2 * time.Hour),
		Format:     model.Format2D,
		Language:   model.LanguageVO,
		PriceCents: 950,
		Seats:      model.GenerateSeatMap(nil, 0),
	})
	store.PutSnack(&model.Snack{ID: 1, Name: "popcorn", PriceCents: 500, InStock: true})
	store.PutSnack(&model.Snack{ID: 2, Name: "nachos", PriceCents: 650, InStock: false})

	inv := inventory.New(store)
	l := NewLedger(store, store, store, inv)
	return l, store, inv
}

func seatStatus(t *testing.T, store *repository.MemoryStore, seatID string) model.SeatStatus {
	t.Helper()
	sc, err := store.GetScreening(context.Background(), 1)
	require.NoError(t, err)
	seat := sc.Seat(seatID)
	require.NotNil(t, seat)
	return seat.Status
}

func TestCreateBooking(t *testing.T) {
	l, store, _ := newTestLedger(t)

	b, err := l.Create(context.Background(), CreateRequest{
		UserID:      7,
		ScreeningID: 1,
		SeatIDs:     []string{"A1", "A2", "A3"},
		Snacks:      []SnackOrder{{SnackID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, uint32(3*950+2*500), b.TotalAmountCents)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, model.PaymentCompleted, b.PaymentStatus)
	assert.Len(t, b.Reference, ReferenceLength)
	assert.NotZero(t, b.ID)

	require.Len(t, b.Seats, 3)
	assert.Equal(t, "A1", b.Seats[0].SeatID)
	assert.Equal(t, uint32(950), b.Seats[0].PriceCents)
	require.Len(t, b.Snacks, 1)
	assert.Equal(t, "popcorn", b.Snacks[0].Name)
	assert.Equal(t, uint32(500), b.Snacks[0].PriceCents)

	for _, id := range []string{"A1", "A2", "A3"} {
		assert.Equal(t, model.SeatSold, seatStatus(t, store, id))
	}
}

func TestCreateBookingSeatConflict(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1"}})
	require.NoError(t, err)

	_, err = l.Create(ctx, CreateRequest{UserID: 8, ScreeningID: 1, SeatIDs: []string{"A1", "B2"}})
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A1"}, unavailable.SeatIDs)

	// The losing request must not have touched its free seat.
	assert.Equal(t, model.SeatAvailable, seatStatus(t, store, "B2"))
}

func TestCreateBookingUnknownSeat(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.Create(context.Background(), CreateRequest{
		UserID: 7, ScreeningID: 1, SeatIDs: []string{"Z9"},
	})
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCreateBookingBadSnacks(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		snacks []SnackOrder
	}{
		{"unknown snack", []SnackOrder{{SnackID: 99, Quantity: 1}}},
		{"out of stock", []SnackOrder{{SnackID: 2, Quantity: 1}}},
		{"zero quantity", []SnackOrder{{SnackID: 1, Quantity: 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.Create(ctx, CreateRequest{
				UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1"}, Snacks: tc.snacks,
			})
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			// Snack validation runs before the claim, so the seat stays free.
			assert.Equal(t, model.SeatAvailable, seatStatus(t, store, "A1"))
		})
	}
}

func TestCreateBookingSnackQuantityCapped(t *testing.T) {
	l, store, _ := newTestLedger(t)

	// A quantity large enough to wrap 32-bit cents must be rejected,
	// not silently stored with a wrapped total.
	_, err := l.Create(context.Background(), CreateRequest{
		UserID:      7,
		ScreeningID: 1,
		SeatIDs:     []string{"A1"},
		Snacks:      []SnackOrder{{SnackID: 1, Quantity: 8_589_935}},
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, model.SeatAvailable, seatStatus(t, store, "A1"))
}

func TestCreateBookingTotalCeiling(t *testing.T) {
	l, store, _ := newTestLedger(t)
	store.PutSnack(&model.Snack{ID: 3, Name: "caviar", PriceCents: 100_000_000, InStock: true})

	// Within the per-line quantity cap but beyond the 32-bit total.
	_, err := l.Create(context.Background(), CreateRequest{
		UserID:      7,
		ScreeningID: 1,
		SeatIDs:     []string{"A1"},
		Snacks:      []SnackOrder{{SnackID: 3, Quantity: 50}},
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, model.SeatAvailable, seatStatus(t, store, "A1"))
}

func TestCreateBookingServerTotalWins(t *testing.T) {
	l, _, _ := newTestLedger(t)

	b, err := l.Create(context.Background(), CreateRequest{
		UserID:             7,
		ScreeningID:        1,
		SeatIDs:            []string{"A1"},
		ExpectedTotalCents: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(950), b.TotalAmountCents)
}

func TestCreateBookingConsumesOwnHold(t *testing.T) {
	l, _, inv := newTestLedger(t)
	ctx := context.Background()

	_, _, err := inv.Hold(ctx, 1, 7, []string{"A1", "A2"}, model.HoldTTL)
	require.NoError(t, err)

	// Another user cannot book the held seats.
	_, err = l.Create(ctx, CreateRequest{UserID: 8, ScreeningID: 1, SeatIDs: []string{"A1"}})
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// The holder can, and the hold is consumed by the purchase.
	b, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1", "A2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, b.SeatIDs())
}

func TestConcurrentBookingsSingleWinner(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	const contenders = 8
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Create(ctx, CreateRequest{
				UserID:      uint64(100 + i),
				ScreeningID: 1,
				SeatIDs:     []string{"D5", "D6"},
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var unavailable *model.SeatsUnavailableError
		require.ErrorAs(t, err, &unavailable)
	}
	assert.Equal(t, 1, winners)
}

func TestGetBookingVisibility(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1"}})
	require.NoError(t, err)

	got, err := l.Get(ctx, b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, b.Reference, got.Reference)

	_, err = l.Get(ctx, b.ID, 8, model.RoleCustomer)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = l.Get(ctx, b.ID, 8, model.RoleAdmin)
	assert.NoError(t, err)

	_, err = l.Get(ctx, 999, 7, model.RoleCustomer)
	assert.ErrorIs(t, err, model.ErrBookingNotFound)
}

func TestCancelBooking(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1", "A2"}})
	require.NoError(t, err)

	cancelled, err := l.Cancel(ctx, b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)

	assert.Equal(t, model.SeatAvailable, seatStatus(t, store, "A1"))
	assert.Equal(t, model.SeatAvailable, seatStatus(t, store, "A2"))

	// A freed seat is bookable again.
	_, err = l.Create(ctx, CreateRequest{UserID: 8, ScreeningID: 1, SeatIDs: []string{"A1"}})
	assert.NoError(t, err)
}

func TestCancelWindow(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1"}})
	require.NoError(t, err)

	// One second before the screening starts cancellation still works.
	l.WithClock(func() time.Time { return screeningStart.Add(-time.Second) })
	_, err = l.Cancel(ctx, b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)

	b2, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A2"}})
	require.NoError(t, err)

	// At the start instant the window is closed.
	l.WithClock(func() time.Time { return screeningStart })
	_, err = l.Cancel(ctx, b2.ID, 7, model.RoleCustomer)
	assert.ErrorIs(t, err, model.ErrCancellationWindowClosed)
}

func TestCancelIdempotent(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1"}})
	require.NoError(t, err)

	_, err = l.Cancel(ctx, b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)

	again, err := l.Cancel(ctx, b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, again.Status)
}

func TestCancelAuthorization(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1"}})
	require.NoError(t, err)

	_, err = l.Cancel(ctx, b.ID, 8, model.RoleCustomer)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = l.Cancel(ctx, b.ID, 8, model.RoleAdmin)
	assert.NoError(t, err)
}

func TestListForUser(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A1"}})
	require.NoError(t, err)
	second, err := l.Create(ctx, CreateRequest{UserID: 7, ScreeningID: 1, SeatIDs: []string{"A2"}})
	require.NoError(t, err)
	_, err = l.Create(ctx, CreateRequest{UserID: 8, ScreeningID: 1, SeatIDs: []string{"A3"}})
	require.NoError(t, err)

	mine, err := l.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// Newest first.
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestCreateBookingUnknownScreening(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.Create(context.Background(), CreateRequest{
		UserID: 7, ScreeningID: 42, SeatIDs: []string{"A1"},
	})
	assert.True(t, errors.Is(err, model.ErrScreeningNotFound))
}
