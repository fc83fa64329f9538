package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mycine/api/internal/model"
)

// MemoryStore is an in-memory implementation of the screening, snack,
// booking and seat inventory interfaces.  One mutex guards all state,
// which makes every operation trivially atomic; the store backs unit
// tests and local development without a database.
type MemoryStore struct {
	mu         sync.Mutex
	screenings map[uint64]*model.Screening
	snacks     map[uint64]*model.Snack
	bookings   map[uint64]*model.Booking
	holds      map[uint64][]model.SeatHold // keyed by screening id
	refs       map[string]uint64           // booking reference -> id

	nextBookingID uint64
	nextHoldID    uint64

	Now func() time.Time // injectable clock for hold expiry tests
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		screenings: make(map[uint64]*model.Screening),
		snacks:     make(map[uint64]*model.Snack),
		bookings:   make(map[uint64]*model.Booking),
		holds:      make(map[uint64][]model.SeatHold),
		refs:       make(map[string]uint64),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// PutScreening stores or replaces a screening.
func (m *MemoryStore) PutScreening(sc *model.Screening) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sc
	cp.Seats = append([]model.Seat(nil), sc.Seats...)
	m.screenings[sc.ID] = &cp
}

// PutSnack stores or replaces a snack.
func (m *MemoryStore) PutSnack(s *model.Snack) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.snacks[s.ID] = &cp
}

// GetScreening returns a deep copy of the screening.
func (m *MemoryStore) GetScreening(ctx context.Context, id uint64) (*model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.screenings[id]
	if !ok {
		return nil, model.ErrScreeningNotFound
	}
	cp := *sc
	cp.Seats = append([]model.Seat(nil), sc.Seats...)
	return &cp, nil
}

// GetSnack returns a copy of the snack.
func (m *MemoryStore) GetSnack(ctx context.Context, id uint64) (*model.Snack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snacks[id]
	if !ok {
		return nil, model.ErrSnackNotFound
	}
	cp := *s
	return &cp, nil
}

// heldByUserLocked reports whether the user has an unexpired hold on
// the seat.  Callers must hold the mutex.
func (m *MemoryStore) heldByUserLocked(screeningID, userID uint64, seatID string, now time.Time) bool {
	for _, h := range m.holds[screeningID] {
		if h.SeatID == seatID && h.UserID == userID && h.ExpiresAt.After(now) {
			return true
		}
	}
	return false
}

// dropHoldsLocked removes every hold on the listed seats.
func (m *MemoryStore) dropHoldsLocked(screeningID uint64, seatIDs []string) {
	in := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		in[id] = struct{}{}
	}
	kept := m.holds[screeningID][:0]
	for _, h := range m.holds[screeningID] {
		if _, drop := in[h.SeatID]; !drop {
			kept = append(kept, h)
		}
	}
	m.holds[screeningID] = kept
}

func (m *MemoryStore) claimLocked(screeningID, userID uint64, seatIDs []string, target model.SeatStatus) ([]model.Seat, []string, error) {
	sc, ok := m.screenings[screeningID]
	if !ok {
		return nil, nil, model.ErrScreeningNotFound
	}
	now := m.Now()

	var conflicts []string
	idx := make([]int, 0, len(seatIDs))
	for _, id := range seatIDs {
		found := -1
		for i := range sc.Seats {
			if sc.Seats[i].ID == id {
				found = i
				break
			}
		}
		if found < 0 {
			conflicts = append(conflicts, id)
			continue
		}
		switch sc.Seats[found].Status {
		case model.SeatAvailable:
		case model.SeatReserved:
			if !m.heldByUserLocked(screeningID, userID, id, now) {
				conflicts = append(conflicts, id)
				continue
			}
		default:
			conflicts = append(conflicts, id)
			continue
		}
		idx = append(idx, found)
	}
	if len(conflicts) > 0 {
		return nil, conflicts, nil
	}

	claimed := make([]model.Seat, 0, len(idx))
	for _, i := range idx {
		sc.Seats[i].Status = target
		claimed = append(claimed, sc.Seats[i])
	}
	m.dropHoldsLocked(screeningID, seatIDs)
	return claimed, nil, nil
}

// ClaimSeats implements the inventory store: all-or-nothing transition
// of the listed seats to target.
func (m *MemoryStore) ClaimSeats(ctx context.Context, screeningID, userID uint64, seatIDs []string, target model.SeatStatus) ([]model.Seat, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claimLocked(screeningID, userID, seatIDs, target)
}

// HoldSeats claims to reserved and records hold rows in the same
// critical section.
func (m *MemoryStore) HoldSeats(ctx context.Context, screeningID, userID uint64, seatIDs []string, expiresAt time.Time) ([]model.Seat, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	claimed, conflicts, err := m.claimLocked(screeningID, userID, seatIDs, model.SeatReserved)
	if err != nil || len(conflicts) > 0 {
		return nil, conflicts, err
	}
	now := m.Now()
	for _, id := range seatIDs {
		m.nextHoldID++
		m.holds[screeningID] = append(m.holds[screeningID], model.SeatHold{
			ID:          m.nextHoldID,
			UserID:      userID,
			ScreeningID: screeningID,
			SeatID:      id,
			Token:       uuid.NewString(),
			ExpiresAt:   expiresAt,
			CreatedAt:   now,
		})
	}
	return claimed, nil, nil
}

func (m *MemoryStore) releaseLocked(screeningID uint64, seatIDs []string) error {
	sc, ok := m.screenings[screeningID]
	if !ok {
		return model.ErrScreeningNotFound
	}
	in := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		in[id] = struct{}{}
	}
	for i := range sc.Seats {
		if _, hit := in[sc.Seats[i].ID]; hit {
			sc.Seats[i].Status = model.SeatAvailable
		}
	}
	m.dropHoldsLocked(screeningID, seatIDs)
	return nil
}

// ReleaseSeats frees the listed seats unconditionally.
func (m *MemoryStore) ReleaseSeats(ctx context.Context, screeningID uint64, seatIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(screeningID, seatIDs)
}

// ReleaseHolds frees every seat the user holds on the screening.
func (m *MemoryStore) ReleaseHolds(ctx context.Context, screeningID, userID uint64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, h := range m.holds[screeningID] {
		if h.UserID == userID {
			ids = append(ids, h.SeatID)
		}
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	if err := m.freeReservedLocked(screeningID, ids); err != nil {
		return nil, err
	}
	m.dropHoldsLocked(screeningID, ids)
	return ids, nil
}

// SweepExpiredHolds frees seats whose holds have lapsed.
func (m *MemoryStore) SweepExpiredHolds(ctx context.Context, screeningID uint64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	var ids []string
	for _, h := range m.holds[screeningID] {
		if !h.ExpiresAt.After(now) {
			ids = append(ids, h.SeatID)
		}
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	if err := m.freeReservedLocked(screeningID, ids); err != nil {
		return nil, err
	}
	m.dropHoldsLocked(screeningID, ids)
	return ids, nil
}

// freeReservedLocked returns reserved seats to available, leaving sold
// seats untouched.
func (m *MemoryStore) freeReservedLocked(screeningID uint64, seatIDs []string) error {
	sc, ok := m.screenings[screeningID]
	if !ok {
		return model.ErrScreeningNotFound
	}
	in := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		in[id] = struct{}{}
	}
	for i := range sc.Seats {
		if _, hit := in[sc.Seats[i].ID]; hit && sc.Seats[i].Status == model.SeatReserved {
			sc.Seats[i].Status = model.SeatAvailable
		}
	}
	return nil
}

// CreateBooking stores the booking, enforcing reference uniqueness.
func (m *MemoryStore) CreateBooking(ctx context.Context, b *model.Booking) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.refs[b.Reference]; taken {
		return 0, model.ErrReferenceExists
	}
	m.nextBookingID++
	cp := *b
	cp.ID = m.nextBookingID
	cp.Seats = append([]model.SeatLine(nil), b.Seats...)
	cp.Snacks = append([]model.SnackLine(nil), b.Snacks...)
	m.bookings[cp.ID] = &cp
	m.refs[cp.Reference] = cp.ID
	return cp.ID, nil
}

// GetBooking returns a copy of the booking.
func (m *MemoryStore) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	cp := *b
	cp.Seats = append([]model.SeatLine(nil), b.Seats...)
	cp.Snacks = append([]model.SnackLine(nil), b.Snacks...)
	return &cp, nil
}

// ListBookingsByUser returns the user's bookings newest first.
func (m *MemoryStore) ListBookingsByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID != userID {
			continue
		}
		cp := *b
		cp.Seats = append([]model.SeatLine(nil), b.Seats...)
		cp.Snacks = append([]model.SnackLine(nil), b.Snacks...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CancelBooking marks the booking cancelled and frees its seats in one
// critical section.
func (m *MemoryStore) CancelBooking(ctx context.Context, bookingID, screeningID uint64, seatIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return model.ErrBookingNotFound
	}
	if b.Status == model.BookingCancelled {
		return nil
	}
	if err := m.releaseLocked(screeningID, seatIDs); err != nil {
		return err
	}
	b.Status = model.BookingCancelled
	return nil
}
