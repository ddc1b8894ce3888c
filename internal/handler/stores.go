package handler

import (
	"context"
	"time"

	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/queue"
)

// The handler layer depends on narrow store interfaces rather than the
// concrete repositories so tests can substitute mocks. The repository
// types satisfy these interfaces.

// UserStore is the user directory surface consumed by auth handlers.
type UserStore interface {
	Create(ctx context.Context, email, username, password string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Activate(ctx context.Context, email string) (model.User, error)
}

// MovieStore is the catalog surface consumed by movie handlers.
type MovieStore interface {
	Create(ctx context.Context, title string, releaseDate time.Time, category, summary *string) (model.Movie, error)
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
	List(ctx context.Context) ([]model.Movie, error)
	Search(ctx context.Context, keyword string) ([]model.Movie, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]model.Movie, error)
	Delete(ctx context.Context, id uint64) error
}

// WatchlistStore is the watchlist engine surface consumed by watchlist
// handlers.
type WatchlistStore interface {
	Add(ctx context.Context, movieID uint64, userEmail string) (model.WatchlistEntry, error)
	Remove(ctx context.Context, movieID uint64, userEmail string) error
	MarkWatched(ctx context.Context, movieID uint64, userEmail string, now time.Time) (model.WatchlistMovie, error)
	Get(ctx context.Context, movieID uint64, userEmail string) (model.WatchlistMovie, error)
	ListForUser(ctx context.Context, userEmail string, watchedOnly bool) ([]model.WatchlistMovie, error)
	ListUpcoming(ctx context.Context, userEmail string, now time.Time) ([]model.WatchlistMovie, error)
}

// RegistrationPublisher pushes signup events toward the email worker.
type RegistrationPublisher interface {
	PublishUserRegistered(ctx context.Context, event queue.UserRegisteredEvent) error
}
