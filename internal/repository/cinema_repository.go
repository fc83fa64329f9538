package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mycine/api/internal/model"
)

// CinemaRepo provides data access to the 'cinemas' table.
type CinemaRepo struct{ DB *sql.DB }

func NewCinemaRepo(db *sql.DB) *CinemaRepo { return &CinemaRepo{DB: db} }

// Create inserts a cinema and returns its ID.
func (r *CinemaRepo) Create(ctx context.Context, name, address, city string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO cinemas (name, address, city) VALUES (?,?,?)",
		name, address, city)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a cinema by id.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	var c model.Cinema
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,address,city,created_at FROM cinemas WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCinemaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all cinemas, optionally filtered by city, ordered by name.
func (r *CinemaRepo) List(ctx context.Context, city string) ([]*model.Cinema, error) {
	q := "SELECT id,name,address,city,created_at FROM cinemas"
	args := []interface{}{}
	if city != "" {
		q += " WHERE city=?"
		args = append(args, city)
	}
	q += " ORDER BY name"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cinemas := make([]*model.Cinema, 0)
	for rows.Next() {
		var c model.Cinema
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.CreatedAt); err != nil {
			return nil, err
		}
		cinemas = append(cinemas, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cinemas, nil
}
