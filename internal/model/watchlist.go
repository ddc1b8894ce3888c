package model

import "time"

// WatchlistEntry models a row in the `watchlist_entries` table.  The
// composite primary key (MovieID, UserEmail) guarantees a user holds at
// most one entry per movie.  Watched and WatchedAt always change
// together: an entry is either unwatched with a NULL timestamp or
// watched with the timestamp of the transition.
type WatchlistEntry struct {
	MovieID   uint64     `json:"movie_id"`
	UserEmail string     `json:"user_email"`
	AddedAt   time.Time  `json:"added_at"`
	Watched   bool       `json:"watched"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
}

// WatchlistMovie is the joined view of a movie together with the user's
// watchlist entry for it.  It is produced by explicit JOIN queries in the
// watchlist repository; relationships are never traversed lazily.
type WatchlistMovie struct {
	Movie
	AddedAt   time.Time  `json:"added_at"`
	Watched   bool       `json:"watched"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
}
