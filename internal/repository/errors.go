// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and to
// build precise user-facing messages without exposing storage detail.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie id does not exist in the
// catalog. Handlers should translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrUserNotFound is returned when an email does not belong to a
// registered user. Handlers should translate this into an HTTP 404
// response (or 401 when it surfaces during credential resolution).
var ErrUserNotFound = errors.New("user not found")

// ErrEntryNotFound is returned when a (movie, user) pair has no
// watchlist entry. Handlers should translate this into an HTTP 404
// response naming the movie id.
var ErrEntryNotFound = errors.New("watchlist entry not found")

// ErrConflict is returned when a delete cannot be performed because of
// dependent state, such as removing a movie that still appears in
// watchlists. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
