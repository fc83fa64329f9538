package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mycine/api/internal/model"
)

// MovieRepo provides data access to the 'movies' table.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

// Create inserts a movie and returns its ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO movies (tmdb_id, title, poster_path) VALUES (?,?,?)",
		m.TMDBID, m.Title, m.PosterPath)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a movie by id.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,tmdb_id,title,poster_path FROM movies WHERE id=? LIMIT 1",
		id).Scan(&m.ID, &m.TMDBID, &m.Title, &m.PosterPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetOrCreateByTMDB returns the movie with the given TMDB id, creating
// the row when it is first referenced by a screening.
func (r *MovieRepo) GetOrCreateByTMDB(ctx context.Context, tmdbID int64, title, posterPath string) (*model.Movie, error) {
	var m model.Movie
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,tmdb_id,title,poster_path FROM movies WHERE tmdb_id=? LIMIT 1",
		tmdbID).Scan(&m.ID, &m.TMDBID, &m.Title, &m.PosterPath)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	m = model.Movie{TMDBID: tmdbID, Title: title, PosterPath: posterPath}
	id, err := r.Create(ctx, &m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return &m, nil
}

// List returns all movies ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]*model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,tmdb_id,title,poster_path FROM movies ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]*model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.TMDBID, &m.Title, &m.PosterPath); err != nil {
			return nil, err
		}
		movies = append(movies, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}
