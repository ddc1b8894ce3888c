package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// MovieRepo provides CRUD and search operations over the shared movie
// catalog. Movies have no owner; any caller may create or delete them.
// All timestamp columns are stored in UTC (the DSN pins loc=UTC).
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = "id,title,release_date,category,summary,created_at,updated_at"

func scanMovie(row interface{ Scan(...any) error }) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.Title, &m.ReleaseDate, &m.Category, &m.Summary, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a movie and returns the stored record with generated id
// and timestamps populated.
func (r *MovieRepo) Create(ctx context.Context, title string, releaseDate time.Time, category, summary *string) (model.Movie, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO movies (title, release_date, category, summary) VALUES (?,?,?,?)",
		title, releaseDate.UTC(), category, summary)
	if err != nil {
		return model.Movie{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Movie{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a movie by id, translating a missing row to
// ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}

// List returns the whole catalog ordered by id. An empty catalog yields
// an empty slice, never an error.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	return r.queryMovies(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id")
}

// Search returns movies whose title contains the keyword. Matching
// follows the column collation; under the utf8mb4 defaults used by the
// schema it is case-insensitive.
func (r *MovieRepo) Search(ctx context.Context, keyword string) ([]model.Movie, error) {
	return r.queryMovies(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE title LIKE ? ORDER BY id",
		"%"+keyword+"%")
}

// ListUpcoming returns movies releasing strictly after now. A movie
// releasing exactly at now is considered released and is excluded.
func (r *MovieRepo) ListUpcoming(ctx context.Context, now time.Time) ([]model.Movie, error) {
	return r.queryMovies(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE release_date > ? ORDER BY release_date",
		now.UTC())
}

// Delete removes a movie by id. While any watchlist still references the
// movie the delete is restricted and ErrConflict is returned, so entries
// are never silently orphaned. The existence check and delete run inside
// one transaction.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var refs int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM watchlist_entries WHERE movie_id=?", id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *MovieRepo) queryMovies(ctx context.Context, query string, args ...any) ([]model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}
