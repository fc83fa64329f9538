package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mycine/api/internal/model"
)

// SnackRepo provides data access to the 'snacks' table.
type SnackRepo struct{ DB *sql.DB }

func NewSnackRepo(db *sql.DB) *SnackRepo { return &SnackRepo{DB: db} }

const snackColumns = "id,name,price_cents,image,category,description,in_stock"

// Create inserts a snack and returns its ID.
func (r *SnackRepo) Create(ctx context.Context, s *model.Snack) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO snacks (name, price_cents, image, category, description, in_stock) VALUES (?,?,?,?,?,?)",
		s.Name, s.PriceCents, s.Image, s.Category, s.Description, s.InStock)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetSnack fetches a snack by id.  The name satisfies the booking
// ledger's SnackCatalog interface.
func (r *SnackRepo) GetSnack(ctx context.Context, id uint64) (*model.Snack, error) {
	var s model.Snack
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+snackColumns+" FROM snacks WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.PriceCents, &s.Image, &s.Category, &s.Description, &s.InStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSnackNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns snacks ordered by category then name.  When inStockOnly
// is set, out-of-stock items are filtered out (the storefront view).
func (r *SnackRepo) List(ctx context.Context, inStockOnly bool) ([]*model.Snack, error) {
	q := "SELECT " + snackColumns + " FROM snacks"
	if inStockOnly {
		q += " WHERE in_stock=1"
	}
	q += " ORDER BY category, name"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	snacks := make([]*model.Snack, 0)
	for rows.Next() {
		var s model.Snack
		if err := rows.Scan(&s.ID, &s.Name, &s.PriceCents, &s.Image, &s.Category, &s.Description, &s.InStock); err != nil {
			return nil, err
		}
		snacks = append(snacks, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snacks, nil
}

// Update overwrites a snack's catalog fields.
func (r *SnackRepo) Update(ctx context.Context, s *model.Snack) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE snacks SET name=?, price_cents=?, image=?, category=?, description=?, in_stock=? WHERE id=?",
		s.Name, s.PriceCents, s.Image, s.Category, s.Description, s.InStock, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrSnackNotFound
	}
	return nil
}

// Delete removes a snack from the catalog.  Existing bookings keep
// their snapshotted snack lines.
func (r *SnackRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM snacks WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrSnackNotFound
	}
	return nil
}
