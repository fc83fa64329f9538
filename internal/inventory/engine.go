// Package inventory owns every transition of a seat's status.  The
// engine validates a requested seat set and delegates the actual
// check-then-set to the store, whose implementations make the step
// indivisible with respect to concurrent callers on the same screening
// (the MySQL store with a conditional bulk UPDATE inside a transaction,
// the in-memory store with a per-screening mutex).  Because isolation
// lives in the shared backing store, it holds across horizontally
// scaled service instances, not just within one process.
package inventory

import (
	"context"
	"time"

	"github.com/mycine/api/internal/model"
)

// SeatStore is the persistence boundary of the engine.  Mutating
// methods are atomic: either every listed seat transitions or none
// does, and a non-empty conflicts slice means nothing was written.
type SeatStore interface {
	// ClaimSeats moves the listed seats of a screening from available to
	// target for the given user.  Seats the user currently holds (status
	// reserved with an unexpired hold) count as claimable; their hold
	// rows are consumed by the claim.  It returns the claimed seat
	// records, or the ids that blocked the claim.
	ClaimSeats(ctx context.Context, screeningID, userID uint64, seatIDs []string, target model.SeatStatus) (claimed []model.Seat, conflicts []string, err error)

	// ReleaseSeats sets the listed seats back to available whatever
	// their current status and drops any hold rows on them.  Unknown
	// ids are ignored.
	ReleaseSeats(ctx context.Context, screeningID uint64, seatIDs []string) error

	// HoldSeats is ClaimSeats to reserved plus the creation of hold rows
	// expiring at expiresAt, in the same atomic step.
	HoldSeats(ctx context.Context, screeningID, userID uint64, seatIDs []string, expiresAt time.Time) (claimed []model.Seat, conflicts []string, err error)

	// ReleaseHolds drops every hold the user has on the screening and
	// frees the matching seats, returning the freed seat ids.
	ReleaseHolds(ctx context.Context, screeningID, userID uint64) ([]string, error)

	// SweepExpiredHolds frees every seat of the screening whose hold has
	// lapsed and deletes the stale hold rows, returning the freed ids.
	SweepExpiredHolds(ctx context.Context, screeningID uint64) ([]string, error)
}

// Engine enforces the seat state machine: available to reserved or
// sold via Claim, reserved to sold when the holder completes checkout,
// and anything back to available via Release.  A sale may skip the
// reserved stage entirely when the client books without a hold.
type Engine struct {
	store SeatStore
	now   func() time.Time
}

// New returns an Engine backed by the given store.  The clock defaults
// to time.Now and is injectable for hold expiry tests.
func New(store SeatStore) *Engine {
	if store == nil {
		panic("inventory: nil store")
	}
	return &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the engine's clock and returns the engine.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// validateSet rejects empty sets, duplicates and blank ids before any
// store call, returning the deduplication-checked slice.
func validateSet(seatIDs []string) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, model.Validationf("seat set is empty")
	}
	seen := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == "" {
			return nil, model.Validationf("seat set contains an empty id")
		}
		if _, dup := seen[id]; dup {
			return nil, model.Validationf("seat set contains duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	return seatIDs, nil
}

// Claim atomically transitions every listed seat of the screening to
// target (reserved or sold) on behalf of userID.  If any seat is not
// claimable the whole call fails with a SeatsUnavailableError naming
// the conflicting ids and no seat is touched.  On success the claimed
// seat records are returned for snapshotting.
func (e *Engine) Claim(ctx context.Context, screeningID, userID uint64, seatIDs []string, target model.SeatStatus) ([]model.Seat, error) {
	if target != model.SeatReserved && target != model.SeatSold {
		return nil, model.Validationf("invalid target status %q", target)
	}
	ids, err := validateSet(seatIDs)
	if err != nil {
		return nil, err
	}
	claimed, conflicts, err := e.store.ClaimSeats(ctx, screeningID, userID, ids, target)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &model.SeatsUnavailableError{SeatIDs: conflicts}
	}
	return claimed, nil
}

// Release returns every listed seat to available regardless of its
// current status.  Releasing an already-available seat is a no-op, so
// the call is idempotent.
func (e *Engine) Release(ctx context.Context, screeningID uint64, seatIDs []string) error {
	ids, err := validateSet(seatIDs)
	if err != nil {
		return err
	}
	return e.store.ReleaseSeats(ctx, screeningID, ids)
}

// Hold sweeps expired holds on the screening, then places a temporary
// hold on the listed seats for the user: seats move to reserved and a
// hold row with the given TTL is recorded for each.  All-or-nothing
// like Claim.
func (e *Engine) Hold(ctx context.Context, screeningID, userID uint64, seatIDs []string, ttl time.Duration) ([]model.Seat, time.Time, error) {
	ids, err := validateSet(seatIDs)
	if err != nil {
		return nil, time.Time{}, err
	}
	if ttl <= 0 {
		ttl = model.HoldTTL
	}
	if _, err := e.store.SweepExpiredHolds(ctx, screeningID); err != nil {
		return nil, time.Time{}, err
	}
	expiresAt := e.now().UTC().Add(ttl)
	claimed, conflicts, err := e.store.HoldSeats(ctx, screeningID, userID, ids, expiresAt)
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(conflicts) > 0 {
		return nil, time.Time{}, &model.SeatsUnavailableError{SeatIDs: conflicts}
	}
	return claimed, expiresAt, nil
}

// ReleaseUserHolds frees every seat the user currently holds on the
// screening and returns the freed seat ids.
func (e *Engine) ReleaseUserHolds(ctx context.Context, screeningID, userID uint64) ([]string, error) {
	return e.store.ReleaseHolds(ctx, screeningID, userID)
}

// Sweep frees seats whose holds have expired.  Called at the start of
// every hold and booking path so stale reserved seats never linger.
func (e *Engine) Sweep(ctx context.Context, screeningID uint64) ([]string, error) {
	return e.store.SweepExpiredHolds(ctx, screeningID)
}
