package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/repository"
)

func newTestEngine(t *testing.T) (*Engine, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutScreening(&model.Screening{
		ID:         1,
		PriceCents: 950,
		StartsAt:   time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC),
		Seats:      model.GenerateSeatMap(nil, 0),
	})
	return New(store), store
}

func status(t *testing.T, store *repository.MemoryStore, seatID string) model.SeatStatus {
	t.Helper()
	sc, err := store.GetScreening(context.Background(), 1)
	require.NoError(t, err)
	seat := sc.Seat(seatID)
	require.NotNil(t, seat)
	return seat.Status
}

func TestClaimValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		ids    []string
		target model.SeatStatus
	}{
		{"empty set", nil, model.SeatSold},
		{"blank id", []string{"A1", ""}, model.SeatSold},
		{"duplicate id", []string{"A1", "A1"}, model.SeatSold},
		{"bad target", []string{"A1"}, model.SeatAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Claim(ctx, 1, 7, tc.ids, tc.target)
			var verr *model.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestClaimConflictListsBlockingSeats(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Claim(ctx, 1, 7, []string{"A1"}, model.SeatSold)
	require.NoError(t, err)

	_, err = e.Claim(ctx, 1, 8, []string{"A1", "A2", "Z9"}, model.SeatSold)
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ElementsMatch(t, []string{"A1", "Z9"}, unavailable.SeatIDs)
	assert.Equal(t, model.SeatAvailable, status(t, store, "A2"))
}

func TestReleaseIsIdempotent(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Claim(ctx, 1, 7, []string{"A1"}, model.SeatSold)
	require.NoError(t, err)

	require.NoError(t, e.Release(ctx, 1, []string{"A1"}))
	assert.Equal(t, model.SeatAvailable, status(t, store, "A1"))

	require.NoError(t, e.Release(ctx, 1, []string{"A1"}))
	assert.Equal(t, model.SeatAvailable, status(t, store, "A1"))
}

func TestHoldAndExpiry(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	base := time.Date(2030, 5, 1, 17, 0, 0, 0, time.UTC)
	e.WithClock(func() time.Time { return base })
	store.Now = func() time.Time { return base }

	seats, expiresAt, err := e.Hold(ctx, 1, 7, []string{"B1", "B2"}, time.Minute)
	require.NoError(t, err)
	assert.Len(t, seats, 2)
	assert.Equal(t, base.Add(time.Minute), expiresAt)
	assert.Equal(t, model.SeatReserved, status(t, store, "B1"))

	// While the hold is live other users are blocked.
	_, err = e.Claim(ctx, 1, 8, []string{"B1"}, model.SeatSold)
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// One second before expiry the hold still stands.
	store.Now = func() time.Time { return base.Add(time.Minute - time.Second) }
	freed, err := e.Sweep(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, freed)
	assert.Equal(t, model.SeatReserved, status(t, store, "B1"))

	// At the expiry instant the sweep frees the seats.
	store.Now = func() time.Time { return base.Add(time.Minute) }
	freed, err = e.Sweep(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B1", "B2"}, freed)
	assert.Equal(t, model.SeatAvailable, status(t, store, "B1"))

	_, err = e.Claim(ctx, 1, 8, []string{"B1"}, model.SeatSold)
	assert.NoError(t, err)
}

func TestHolderClaimsOwnSeats(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, _, err := e.Hold(ctx, 1, 7, []string{"C1"}, time.Minute)
	require.NoError(t, err)

	// The holder's claim succeeds and consumes the hold.
	seats, err := e.Claim(ctx, 1, 7, []string{"C1"}, model.SeatSold)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, model.SeatSold, seats[0].Status)
}

func TestSweepLeavesSoldSeats(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	_, _, err := e.Hold(ctx, 1, 7, []string{"C1"}, time.Minute)
	require.NoError(t, err)
	_, err = e.Claim(ctx, 1, 7, []string{"C1"}, model.SeatSold)
	require.NoError(t, err)

	// Even with the clock far past the hold TTL a sold seat stays sold.
	store.Now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	freed, err := e.Sweep(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, freed)
	assert.Equal(t, model.SeatSold, status(t, store, "C1"))
}

func TestReleaseUserHolds(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	_, _, err := e.Hold(ctx, 1, 7, []string{"D1", "D2"}, time.Minute)
	require.NoError(t, err)
	_, _, err = e.Hold(ctx, 1, 8, []string{"D5"}, time.Minute)
	require.NoError(t, err)

	freed, err := e.ReleaseUserHolds(ctx, 1, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"D1", "D2"}, freed)
	assert.Equal(t, model.SeatAvailable, status(t, store, "D1"))
	// The other user's hold is untouched.
	assert.Equal(t, model.SeatReserved, status(t, store, "D5"))

	// No active holds left: release is a no-op.
	freed, err = e.ReleaseUserHolds(ctx, 1, 7)
	require.NoError(t, err)
	assert.Empty(t, freed)
}

func TestHoldConflict(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, _, err := e.Hold(ctx, 1, 7, []string{"E1"}, time.Minute)
	require.NoError(t, err)

	_, _, err = e.Hold(ctx, 1, 8, []string{"E1", "E2"}, time.Minute)
	var unavailable *model.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"E1"}, unavailable.SeatIDs)
}
