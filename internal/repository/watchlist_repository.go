package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// WatchlistRepo owns the per-user watchlist entries and their watched
// state. Every multi-step mutation runs inside a single transaction so
// an abandoned request never leaves a partial write, and the composite
// primary key (movie_id, user_email) closes the check-then-insert race
// on duplicate adds.
type WatchlistRepo struct{ DB *sql.DB }

func NewWatchlistRepo(db *sql.DB) *WatchlistRepo { return &WatchlistRepo{DB: db} }

// ErrDuplicateEntry is returned when the movie is already on the user's
// watchlist. Handlers should translate this into an HTTP 403 response.
var ErrDuplicateEntry = errors.New("movie already in watchlist")

// ErrNotReleased is returned when a watched transition is attempted
// before the movie's release date. Handlers should translate this into
// an HTTP 403 response.
var ErrNotReleased = errors.New("movie not released yet")

const joinedColumns = `m.id, m.title, m.release_date, m.category, m.summary, m.created_at, m.updated_at,
	       w.added_at, w.watched, w.watched_at`

// released reports whether a movie with the given release date may be
// marked watched at the given instant. The comparison is strict: a movie
// releasing exactly at now counts as released.
func released(releaseDate, now time.Time) bool {
	return !releaseDate.After(now)
}

// Add creates a watchlist entry for (movieID, userEmail). The movie and
// the user must both exist; the checks run in the same transaction as
// the insert so the error can name the missing entity without racing a
// concurrent delete.
func (r *WatchlistRepo) Add(ctx context.Context, movieID uint64, userEmail string) (model.WatchlistEntry, error) {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WatchlistEntry{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := movieExistsTx(ctx, tx, movieID); err != nil {
		return model.WatchlistEntry{}, err
	}
	if err := userExistsTx(ctx, tx, userEmail); err != nil {
		return model.WatchlistEntry{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO watchlist_entries (movie_id, user_email) VALUES (?,?)",
		movieID, userEmail); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.WatchlistEntry{}, ErrDuplicateEntry
		}
		return model.WatchlistEntry{}, err
	}

	var e model.WatchlistEntry
	if err := tx.QueryRowContext(ctx,
		"SELECT movie_id, user_email, added_at, watched, watched_at FROM watchlist_entries WHERE movie_id=? AND user_email=?",
		movieID, userEmail).Scan(&e.MovieID, &e.UserEmail, &e.AddedAt, &e.Watched, &e.WatchedAt); err != nil {
		return model.WatchlistEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.WatchlistEntry{}, err
	}
	committed = true
	return e, nil
}

// Remove deletes the entry for (movieID, userEmail). A missing user
// yields ErrUserNotFound so the caller can distinguish it from a missing
// entry (ErrEntryNotFound).
func (r *WatchlistRepo) Remove(ctx context.Context, movieID uint64, userEmail string) error {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
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

	if err := userExistsTx(ctx, tx, userEmail); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM watchlist_entries WHERE movie_id=? AND user_email=?",
		movieID, userEmail)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkWatched transitions an entry to watched, gated on the movie's
// release date. The watched flag and timestamp are written by the same
// statement, so a reader never observes one without the other. The
// transition is sticky: re-marking an already watched entry succeeds and
// keeps the original watched timestamp.
func (r *WatchlistRepo) MarkWatched(ctx context.Context, movieID uint64, userEmail string, now time.Time) (model.WatchlistMovie, error) {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	now = now.UTC()
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WatchlistMovie{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := userExistsTx(ctx, tx, userEmail); err != nil {
		return model.WatchlistMovie{}, err
	}
	// Lock the entry row so two concurrent transitions serialize on the
	// composite key instead of both observing "not yet watched".
	var watched bool
	var releaseDate time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT w.watched, m.release_date
		 FROM watchlist_entries w JOIN movies m ON m.id = w.movie_id
		 WHERE w.movie_id=? AND w.user_email=? FOR UPDATE`,
		movieID, userEmail).Scan(&watched, &releaseDate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WatchlistMovie{}, ErrEntryNotFound
	}
	if err != nil {
		return model.WatchlistMovie{}, err
	}
	if !released(releaseDate, now) {
		return model.WatchlistMovie{}, ErrNotReleased
	}
	if !watched {
		if _, err := tx.ExecContext(ctx,
			"UPDATE watchlist_entries SET watched=1, watched_at=? WHERE movie_id=? AND user_email=?",
			now, movieID, userEmail); err != nil {
			return model.WatchlistMovie{}, err
		}
	}

	wm, err := getJoinedTx(ctx, tx, movieID, userEmail)
	if err != nil {
		return model.WatchlistMovie{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.WatchlistMovie{}, err
	}
	committed = true
	return wm, nil
}

// Get returns the joined movie + entry record for (movieID, userEmail).
// It distinguishes a missing user from a missing entry so handlers can
// name the missing entity precisely.
func (r *WatchlistRepo) Get(ctx context.Context, movieID uint64, userEmail string) (model.WatchlistMovie, error) {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	if err := userExists(ctx, r.DB, userEmail); err != nil {
		return model.WatchlistMovie{}, err
	}
	var wm model.WatchlistMovie
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+joinedColumns+`
		 FROM movies m JOIN watchlist_entries w ON w.movie_id = m.id
		 WHERE w.user_email=? AND m.id=?`,
		userEmail, movieID).Scan(
		&wm.ID, &wm.Title, &wm.ReleaseDate, &wm.Category, &wm.Summary, &wm.CreatedAt, &wm.UpdatedAt,
		&wm.AddedAt, &wm.Watched, &wm.WatchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WatchlistMovie{}, ErrEntryNotFound
	}
	return wm, err
}

// ListForUser returns the user's watchlist joined with the catalog. With
// watchedOnly set, only watched entries are returned. A user with no
// entries gets an empty slice.
func (r *WatchlistRepo) ListForUser(ctx context.Context, userEmail string, watchedOnly bool) ([]model.WatchlistMovie, error) {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	query := `SELECT ` + joinedColumns + `
		 FROM movies m JOIN watchlist_entries w ON w.movie_id = m.id
		 WHERE w.user_email=?`
	if watchedOnly {
		query += " AND w.watched=1"
	}
	query += " ORDER BY w.added_at DESC, m.id DESC"
	return r.queryJoined(ctx, query, userEmail)
}

// ListUpcoming returns the user's watchlist restricted to movies
// releasing strictly after now.
func (r *WatchlistRepo) ListUpcoming(ctx context.Context, userEmail string, now time.Time) ([]model.WatchlistMovie, error) {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	return r.queryJoined(ctx,
		`SELECT `+joinedColumns+`
		 FROM movies m JOIN watchlist_entries w ON w.movie_id = m.id
		 WHERE w.user_email=? AND m.release_date > ?
		 ORDER BY m.release_date`,
		userEmail, now.UTC())
}

func (r *WatchlistRepo) queryJoined(ctx context.Context, query string, args ...any) ([]model.WatchlistMovie, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.WatchlistMovie, 0)
	for rows.Next() {
		var wm model.WatchlistMovie
		if err := rows.Scan(
			&wm.ID, &wm.Title, &wm.ReleaseDate, &wm.Category, &wm.Summary, &wm.CreatedAt, &wm.UpdatedAt,
			&wm.AddedAt, &wm.Watched, &wm.WatchedAt); err != nil {
			return nil, err
		}
		list = append(list, wm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func getJoinedTx(ctx context.Context, tx *sql.Tx, movieID uint64, userEmail string) (model.WatchlistMovie, error) {
	var wm model.WatchlistMovie
	err := tx.QueryRowContext(ctx,
		`SELECT `+joinedColumns+`
		 FROM movies m JOIN watchlist_entries w ON w.movie_id = m.id
		 WHERE w.user_email=? AND m.id=?`,
		userEmail, movieID).Scan(
		&wm.ID, &wm.Title, &wm.ReleaseDate, &wm.Category, &wm.Summary, &wm.CreatedAt, &wm.UpdatedAt,
		&wm.AddedAt, &wm.Watched, &wm.WatchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WatchlistMovie{}, ErrEntryNotFound
	}
	return wm, err
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func userExists(ctx context.Context, q queryRower, email string) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func userExistsTx(ctx context.Context, tx *sql.Tx, email string) error {
	return userExists(ctx, tx, email)
}

func movieExistsTx(ctx context.Context, tx *sql.Tx, movieID uint64) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM movies WHERE id=? LIMIT 1", movieID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMovieNotFound
	}
	return err
}
