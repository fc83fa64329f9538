package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mycine/api/internal/model"
)

// BookingRepo provides data access to the 'bookings', 'booking_seats'
// and 'booking_snacks' tables.  Seat and snack lines are an immutable
// snapshot written once at creation.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateBooking inserts the booking with its seat and snack lines in
// one transaction and returns the generated ID.  A duplicate reference
// maps to model.ErrReferenceExists so the ledger can retry with a fresh
// code.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, screening_id, total_amount_cents, payment_status, status, booking_reference, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		b.UserID, b.ScreeningID, b.TotalAmountCents, string(b.PaymentStatus), string(b.Status), b.Reference, b.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, model.ErrReferenceExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	bookingID := uint64(id)

	if len(b.Seats) > 0 {
		q := `INSERT INTO booking_seats (booking_id, seat_id, row_label, seat_number, price_cents) VALUES `
		args := make([]interface{}, 0, len(b.Seats)*5)
		for i, s := range b.Seats {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?, ?, ?)"
			args = append(args, bookingID, s.SeatID, s.Row, s.Number, s.PriceCents)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, err
		}
	}
	if len(b.Snacks) > 0 {
		q := `INSERT INTO booking_snacks (booking_id, snack_id, name, quantity, price_cents) VALUES `
		args := make([]interface{}, 0, len(b.Snacks)*5)
		for i, s := range b.Snacks {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?, ?, ?)"
			args = append(args, bookingID, s.SnackID, s.Name, s.Quantity, s.PriceCents)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return bookingID, nil
}

const bookingColumns = "id,user_id,screening_id,total_amount_cents,payment_status,status,booking_reference,created_at"

func scanBooking(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Booking, error) {
	var b model.Booking
	var userID sql.NullInt64
	err := scanner.Scan(&b.ID, &userID, &b.ScreeningID, &b.TotalAmountCents,
		&b.PaymentStatus, &b.Status, &b.Reference, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		b.UserID = uint64(userID.Int64)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

// GetBooking fetches a booking with its seat and snack lines.
func (r *BookingRepo) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, map[uint64]*model.Booking{b.ID: b}); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByReference fetches a booking by its reference code.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE booking_reference=? LIMIT 1", ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, map[uint64]*model.Booking{b.ID: b}); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookingsByUser returns the user's bookings newest first, lines
// included.
func (r *BookingRepo) ListBookingsByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListAll returns every booking newest first, for the admin surface.
func (r *BookingRepo) ListAll(ctx context.Context) ([]*model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY created_at DESC")
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...interface{}) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]*model.Booking, 0)
	index := make(map[uint64]*model.Booking)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
		index[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}
	if err := r.loadLines(ctx, index); err != nil {
		return nil, err
	}
	return bookings, nil
}

// loadLines populates seat and snack lines for all bookings in the
// index with one query per line table.
func (r *BookingRepo) loadLines(ctx context.Context, index map[uint64]*model.Booking) error {
	ids := make([]interface{}, 0, len(index))
	ph := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
		ph = append(ph, "?")
	}
	in := strings.Join(ph, ",")

	rows, err := r.db.QueryContext(ctx,
		`SELECT booking_id, seat_id, row_label, seat_number, price_cents
		 FROM booking_seats WHERE booking_id IN (`+in+`)
		 ORDER BY booking_id, row_label, seat_number`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bid uint64
		var line model.SeatLine
		if err := rows.Scan(&bid, &line.SeatID, &line.Row, &line.Number, &line.PriceCents); err != nil {
			return err
		}
		if b, ok := index[bid]; ok {
			b.Seats = append(b.Seats, line)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	srows, err := r.db.QueryContext(ctx,
		`SELECT booking_id, snack_id, name, quantity, price_cents
		 FROM booking_snacks WHERE booking_id IN (`+in+`)
		 ORDER BY booking_id, name`, ids...)
	if err != nil {
		return err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var line model.SnackLine
		if err := srows.Scan(&bid, &line.SnackID, &line.Name, &line.Quantity, &line.PriceCents); err != nil {
			return err
		}
		if b, ok := index[bid]; ok {
			b.Snacks = append(b.Snacks, line)
		}
	}
	return srows.Err()
}

// CancelBooking marks the booking cancelled and frees its seats in one
// transaction, so a crash can never leave a cancelled booking with sold
// seats or freed seats on a live booking.
func (r *BookingRepo) CancelBooking(ctx context.Context, bookingID, screeningID uint64, seatIDs []string) error {
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

	res, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status='cancelled' WHERE id=? AND status<>'cancelled'", bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Already cancelled by a concurrent request; nothing to free.
		return nil
	}

	if len(seatIDs) > 0 {
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
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DashboardStats aggregates the numbers shown on the admin dashboard.
//
// Fields:
//  TotalBookings      – bookings ever created, cancelled included.
//  ActiveBookings     – bookings not cancelled.
//  TotalUsers         – registered accounts.
//  UpcomingScreenings – screenings starting after now.
//  SeatsSold          – seat lines on non-cancelled bookings.
//  TicketRevenueCents – seat line revenue on non-cancelled bookings.
//  SnackRevenueCents  – snack line revenue on non-cancelled bookings.
type DashboardStats struct {
	TotalBookings      int    `json:"total_bookings"`
	ActiveBookings     int    `json:"active_bookings"`
	TotalUsers         int    `json:"total_users"`
	UpcomingScreenings int    `json:"upcoming_screenings"`
	SeatsSold          int    `json:"seats_sold"`
	TicketRevenueCents uint64 `json:"ticket_revenue_cents"`
	SnackRevenueCents  uint64 `json:"snack_revenue_cents"`
}

// GetDashboardStats computes the admin dashboard aggregates.
func (r *BookingRepo) GetDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	var st DashboardStats
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(status<>'cancelled'),0) FROM bookings`).
		Scan(&st.TotalBookings, &st.ActiveBookings); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&st.TotalUsers); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM screenings WHERE starts_at > ?`, now.UTC()).
		Scan(&st.UpcomingScreenings); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(bs.price_cents),0)
		 FROM booking_seats bs JOIN bookings b ON b.id = bs.booking_id
		 WHERE b.status<>'cancelled'`).
		Scan(&st.SeatsSold, &st.TicketRevenueCents); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(sn.quantity * sn.price_cents),0)
		 FROM booking_snacks sn JOIN bookings b ON b.id = sn.booking_id
		 WHERE b.status<>'cancelled'`).
		Scan(&st.SnackRevenueCents); err != nil {
		return nil, err
	}
	return &st, nil
}
