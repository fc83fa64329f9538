package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mycine/api/internal/model"
)

// ScreeningRepo provides data access to the 'screenings' and
// 'screening_seats' tables.  The seat rows are the availability source
// of truth; booking rows never answer availability questions.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo returns a ScreeningRepo bound to the given database.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo { return &ScreeningRepo{db: db} }

const screeningColumns = "id,cinema_id,movie_id,tmdb_movie_id,room_id,room_name,starts_at,ends_at,format,language,price_cents"

// Create inserts a screening together with its full seat map in one
// transaction, so a screening can never exist half-seated.  The
// generated ID is written back onto the record.
func (r *ScreeningRepo) Create(ctx context.Context, sc *model.Screening) error {
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
		`INSERT INTO screenings (cinema_id, movie_id, tmdb_movie_id, room_id, room_name, starts_at, ends_at, format, language, price_cents)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		sc.CinemaID, sc.MovieID, sc.TMDBMovieID, sc.RoomID, sc.RoomName,
		sc.StartsAt.UTC(), sc.EndsAt.UTC(), sc.Format, sc.Language, sc.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sc.ID = uint64(id)

	if len(sc.Seats) > 0 {
		query := `INSERT INTO screening_seats (screening_id, seat_id, row_label, seat_number, status) VALUES `
		args := make([]interface{}, 0, len(sc.Seats)*5)
		for i, seat := range sc.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, sc.ID, seat.ID, seat.Row, seat.Number, string(seat.Status))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetScreening fetches a screening with its ordered seat map.  The name
// satisfies the booking ledger's ScreeningStore interface.
func (r *ScreeningRepo) GetScreening(ctx context.Context, id uint64) (*model.Screening, error) {
	var sc model.Screening
	err := r.db.QueryRowContext(ctx,
		"SELECT "+screeningColumns+" FROM screenings WHERE id=? LIMIT 1", id).Scan(
		&sc.ID, &sc.CinemaID, &sc.MovieID, &sc.TMDBMovieID, &sc.RoomID, &sc.RoomName,
		&sc.StartsAt, &sc.EndsAt, &sc.Format, &sc.Language, &sc.PriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrScreeningNotFound
	}
	if err != nil {
		return nil, err
	}
	sc.StartsAt = sc.StartsAt.UTC()
	sc.EndsAt = sc.EndsAt.UTC()

	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_id, row_label, seat_number, status
		 FROM screening_seats WHERE screening_id=?
		 ORDER BY row_label, seat_number`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var seat model.Seat
		if err := rows.Scan(&seat.ID, &seat.Row, &seat.Number, &seat.Status); err != nil {
			return nil, err
		}
		sc.Seats = append(sc.Seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListFilter narrows the screening listing.  Zero values mean "no
// filter" for ids; a zero Day lists all dates.
type ListFilter struct {
	CinemaID uint64
	MovieID  uint64
	Day      time.Time
}

// List returns screenings matching the filter, ordered by start time.
// Seat maps are not loaded; listings only need the scalar fields plus a
// derived available-seat count.
func (r *ScreeningRepo) List(ctx context.Context, f ListFilter) ([]*model.Screening, error) {
	q := `SELECT ` + screeningColumns + ` FROM screenings`
	conds := []string{}
	args := []interface{}{}
	if f.CinemaID != 0 {
		conds = append(conds, "cinema_id=?")
		args = append(args, f.CinemaID)
	}
	if f.MovieID != 0 {
		conds = append(conds, "movie_id=?")
		args = append(args, f.MovieID)
	}
	if !f.Day.IsZero() {
		day := f.Day.UTC()
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		conds = append(conds, "starts_at >= ? AND starts_at < ?")
		args = append(args, start, start.Add(24*time.Hour))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY starts_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	screenings := make([]*model.Screening, 0)
	for rows.Next() {
		var sc model.Screening
		if err := rows.Scan(
			&sc.ID, &sc.CinemaID, &sc.MovieID, &sc.TMDBMovieID, &sc.RoomID, &sc.RoomName,
			&sc.StartsAt, &sc.EndsAt, &sc.Format, &sc.Language, &sc.PriceCents); err != nil {
			return nil, err
		}
		sc.StartsAt = sc.StartsAt.UTC()
		sc.EndsAt = sc.EndsAt.UTC()
		screenings = append(screenings, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return screenings, nil
}

// CountAvailableSeats returns the number of available seats per
// screening id, for listing views.
func (r *ScreeningRepo) CountAvailableSeats(ctx context.Context, screeningIDs []uint64) (map[uint64]int, error) {
	counts := make(map[uint64]int, len(screeningIDs))
	if len(screeningIDs) == 0 {
		return counts, nil
	}
	placeholders := make([]string, 0, len(screeningIDs))
	args := make([]interface{}, 0, len(screeningIDs))
	for _, id := range screeningIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT screening_id, COUNT(*) FROM screening_seats
	      WHERE status='available' AND screening_id IN (` + strings.Join(placeholders, ",") + `)
	      GROUP BY screening_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Update overwrites a screening's scalar fields.  The seat map is never
// rewritten here; seat status belongs to the inventory store.
func (r *ScreeningRepo) Update(ctx context.Context, sc *model.Screening) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE screenings SET cinema_id=?, movie_id=?, tmdb_movie_id=?, room_id=?, room_name=?,
		 starts_at=?, ends_at=?, format=?, language=?, price_cents=? WHERE id=?`,
		sc.CinemaID, sc.MovieID, sc.TMDBMovieID, sc.RoomID, sc.RoomName,
		sc.StartsAt.UTC(), sc.EndsAt.UTC(), sc.Format, sc.Language, sc.PriceCents, sc.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrScreeningNotFound
	}
	return nil
}

// Delete removes a screening with its seats and holds, refusing when
// non-cancelled bookings still reference it.
func (r *ScreeningRepo) Delete(ctx context.Context, id uint64) error {
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

	var active int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE screening_id=? AND status<>'cancelled'",
		id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return model.ErrScreeningHasBookings
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM seat_holds WHERE screening_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM screening_seats WHERE screening_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM screenings WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrScreeningNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
