package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mycine/api/internal/model"
)

// SeatInventoryRepo implements the inventory engine's store on MySQL.
// Every mutating method runs inside one transaction and locks the
// affected seat rows with SELECT ... FOR UPDATE, so two concurrent
// claims on overlapping seat sets serialize at the database and exactly
// one of them wins.  The guarantee therefore holds across service
// instances sharing the database, not just within one process.
type SeatInventoryRepo struct {
	db *sql.DB
}

// NewSeatInventoryRepo returns a SeatInventoryRepo bound to the given
// database.
func NewSeatInventoryRepo(db *sql.DB) *SeatInventoryRepo {
	return &SeatInventoryRepo{db: db}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// lockSeats selects and row-locks the requested seats, returning each
// seat's current state plus whether the given user holds an unexpired
// hold on it.  Seat ids missing from the result do not exist on the
// screening.
func lockSeats(ctx context.Context, tx *sql.Tx, screeningID, userID uint64, seatIDs []string) (map[string]lockedSeat, error) {
	q := `SELECT ss.seat_id, ss.row_label, ss.seat_number, ss.status,
	             EXISTS(SELECT 1 FROM seat_holds h
	                    WHERE h.screening_id = ss.screening_id AND h.seat_id = ss.seat_id
	                      AND h.user_id = ? AND h.expires_at > UTC_TIMESTAMP()) AS held_by_user
	      FROM screening_seats ss
	      WHERE ss.screening_id = ? AND ss.seat_id IN (` + placeholders(len(seatIDs)) + `)
	      FOR UPDATE`
	args := make([]interface{}, 0, len(seatIDs)+2)
	args = append(args, userID, screeningID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	locked := make(map[string]lockedSeat, len(seatIDs))
	for rows.Next() {
		var ls lockedSeat
		if err := rows.Scan(&ls.seat.ID, &ls.seat.Row, &ls.seat.Number, &ls.seat.Status, &ls.heldByUser); err != nil {
			return nil, err
		}
		locked[ls.seat.ID] = ls
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locked, nil
}

type lockedSeat struct {
	seat       model.Seat
	heldByUser bool
}

// claimTx is the shared body of ClaimSeats and HoldSeats: lock the
// rows, decide claimability, and either flip every seat to target or
// report the conflicting ids with nothing written.
func (r *SeatInventoryRepo) claimTx(ctx context.Context, tx *sql.Tx, screeningID, userID uint64, seatIDs []string, target model.SeatStatus) ([]model.Seat, []string, error) {
	locked, err := lockSeats(ctx, tx, screeningID, userID, seatIDs)
	if err != nil {
		return nil, nil, err
	}

	var conflicts []string
	claimed := make([]model.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		ls, ok := locked[id]
		if !ok {
			conflicts = append(conflicts, id)
			continue
		}
		switch {
		case ls.seat.Status == model.SeatAvailable:
		case ls.seat.Status == model.SeatReserved && ls.heldByUser:
		default:
			conflicts = append(conflicts, id)
			continue
		}
		ls.seat.Status = target
		claimed = append(claimed, ls.seat)
	}
	if len(conflicts) > 0 {
		return nil, conflicts, nil
	}

	upd := `UPDATE screening_seats SET status=? WHERE screening_id=? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := make([]interface{}, 0, len(seatIDs)+2)
	args = append(args, string(target), screeningID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx, upd, args...); err != nil {
		return nil, nil, err
	}

	// Any hold the user had on these seats is consumed by the claim.
	del := `DELETE FROM seat_holds WHERE screening_id=? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	dargs := make([]interface{}, 0, len(seatIDs)+1)
	dargs = append(dargs, screeningID)
	for _, id := range seatIDs {
		dargs = append(dargs, id)
	}
	if _, err := tx.ExecContext(ctx, del, dargs...); err != nil {
		return nil, nil, err
	}
	return claimed, nil, nil
}

// ClaimSeats transitions the listed seats to target for the user, all
// or nothing.
func (r *SeatInventoryRepo) ClaimSeats(ctx context.Context, screeningID, userID uint64, seatIDs []string, target model.SeatStatus) ([]model.Seat, []string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	claimed, conflicts, err := r.claimTx(ctx, tx, screeningID, userID, seatIDs, target)
	if err != nil || len(conflicts) > 0 {
		return nil, conflicts, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	committed = true
	return claimed, nil, nil
}

// HoldSeats claims the seats as reserved and records a hold row per
// seat in the same transaction.
func (r *SeatInventoryRepo) HoldSeats(ctx context.Context, screeningID, userID uint64, seatIDs []string, expiresAt time.Time) ([]model.Seat, []string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	claimed, conflicts, err := r.claimTx(ctx, tx, screeningID, userID, seatIDs, model.SeatReserved)
	if err != nil || len(conflicts) > 0 {
		return nil, conflicts, err
	}

	q := `INSERT INTO seat_holds (user_id, screening_id, seat_id, hold_token, expires_at) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*5)
	for i, id := range seatIDs {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?, ?)"
		args = append(args, userID, screeningID, id, uuid.NewString(), expiresAt.UTC())
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	committed = true
	return claimed, nil, nil
}

// ReleaseSeats returns the listed seats to available and drops any
// holds on them.  Idempotent: seats already available are untouched.
func (r *SeatInventoryRepo) ReleaseSeats(ctx context.Context, screeningID uint64, seatIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, screeningID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE screening_seats SET status='available' WHERE screening_id=? AND seat_id IN (`+placeholders(len(seatIDs))+`)`,
		args...); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE screening_id=? AND seat_id IN (`+placeholders(len(seatIDs))+`)`,
		args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReleaseHolds drops every hold the user has on the screening and frees
// the held seats, returning the freed seat ids.
func (r *SeatInventoryRepo) ReleaseHolds(ctx context.Context, screeningID, userID uint64) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seatIDs, err := collectHoldSeatIDs(ctx, tx,
		`SELECT seat_id FROM seat_holds WHERE screening_id=? AND user_id=?`,
		screeningID, userID)
	if err != nil {
		return nil, err
	}
	if len(seatIDs) == 0 {
		return []string{}, nil
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE screening_id=? AND user_id=?`,
		screeningID, userID); err != nil {
		return nil, err
	}
	if err := freeReservedSeats(ctx, tx, screeningID, seatIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return seatIDs, nil
}

// SweepExpiredHolds frees every seat of the screening whose hold has
// lapsed, returning the freed seat ids.
func (r *SeatInventoryRepo) SweepExpiredHolds(ctx context.Context, screeningID uint64) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seatIDs, err := collectHoldSeatIDs(ctx, tx,
		`SELECT seat_id FROM seat_holds WHERE screening_id=? AND expires_at <= UTC_TIMESTAMP()`,
		screeningID)
	if err != nil {
		return nil, err
	}
	if len(seatIDs) == 0 {
		return []string{}, nil
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE screening_id=? AND expires_at <= UTC_TIMESTAMP()`,
		screeningID); err != nil {
		return nil, err
	}
	if err := freeReservedSeats(ctx, tx, screeningID, seatIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return seatIDs, nil
}

func collectHoldSeatIDs(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// freeReservedSeats flips the listed seats back to available, but only
// those in reserved: a seat sold between hold expiry and sweep must not
// be clobbered.
func freeReservedSeats(ctx context.Context, tx *sql.Tx, screeningID uint64, seatIDs []string) error {
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, screeningID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE screening_seats SET status='available' WHERE screening_id=? AND status='reserved' AND seat_id IN (`+placeholders(len(seatIDs))+`)`,
		args...)
	return err
}
