package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/middleware"
	"github.com/iliyamo/movie-watchlist/internal/repository"
)

// WatchlistHandler exposes the per-user watchlist. All methods assume the
// JWT middleware already resolved the caller to an existing user and
// stored the email in the context; the handlers never touch credentials.
type WatchlistHandler struct {
	Watchlist WatchlistStore
	Log       *logrus.Logger
}

func NewWatchlistHandler(watchlist WatchlistStore, log *logrus.Logger) *WatchlistHandler {
	return &WatchlistHandler{Watchlist: watchlist, Log: log}
}

type addWatchlistReq struct {
	MovieID uint64 `json:"movie_id" validate:"required"`
}

// Add handles POST /v1/watchlist.
func (h *WatchlistHandler) Add(c echo.Context) error {
	email, err := currentUserEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addWatchlistReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Watchlist.Add(ctx, req.MovieID, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": fmt.Sprintf("There is no movie with ID %d.", req.MovieID),
			})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": fmt.Sprintf("There is no user registered with email %s.", email),
			})
		case errors.Is(err, repository.ErrDuplicateEntry):
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": fmt.Sprintf("You already have movie %d in your watchlist.", req.MovieID),
			})
		default:
			return h.internalError(c, err, "add to watchlist failed")
		}
	}
	return c.JSON(http.StatusOK, entry)
}

// List handles GET /v1/watchlist. With ?watched=true only watched
// entries are returned; a user with no entries gets an empty array.
func (h *WatchlistHandler) List(c echo.Context) error {
	email, err := currentUserEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	watchedOnly := c.QueryParam("watched") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Watchlist.ListForUser(ctx, email, watchedOnly)
	if err != nil {
		return h.internalError(c, err, "list watchlist failed")
	}
	return c.JSON(http.StatusOK, list)
}

// Upcoming handles GET /v1/watchlist/upcoming: the user's entries whose
// movies release strictly after now.
func (h *WatchlistHandler) Upcoming(c echo.Context) error {
	email, err := currentUserEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Watchlist.ListUpcoming(ctx, email, time.Now().UTC())
	if err != nil {
		return h.internalError(c, err, "list upcoming watchlist failed")
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/watchlist/:movieId and returns the joined record.
func (h *WatchlistHandler) Get(c echo.Context) error {
	email, err := currentUserEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := movieIDParam(c, "movieId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	wm, err := h.Watchlist.Get(ctx, id, email)
	if err != nil {
		return h.watchlistError(c, err, id, email)
	}
	return c.JSON(http.StatusOK, wm)
}

// Remove handles DELETE /v1/watchlist/:movieId.
func (h *WatchlistHandler) Remove(c echo.Context) error {
	email, err := currentUserEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := movieIDParam(c, "movieId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Watchlist.Remove(ctx, id, email); err != nil {
		return h.watchlistError(c, err, id, email)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"result": fmt.Sprintf("Movie with ID %d has been removed from your watchlist.", id),
	})
}

// Watch handles PUT /v1/watchlist/:movieId/watch. The transition is
// gated on the movie's release date and sticky once made.
func (h *WatchlistHandler) Watch(c echo.Context) error {
	email, err := currentUserEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := movieIDParam(c, "movieId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	wm, err := h.Watchlist.MarkWatched(ctx, id, email, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotReleased) {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "You cannot watch a movie before its release, be patient!",
			})
		}
		return h.watchlistError(c, err, id, email)
	}
	return c.JSON(http.StatusOK, wm)
}

// watchlistError maps the shared not-found cases; anything unrecognized
// is logged and answered with an opaque 500.
func (h *WatchlistHandler) watchlistError(c echo.Context, err error, movieID uint64, email string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": fmt.Sprintf("There is no user registered with email %s.", email),
		})
	case errors.Is(err, repository.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": fmt.Sprintf("There is no movie with ID %d in your watchlist.", movieID),
		})
	default:
		return h.internalError(c, err, "watchlist operation failed")
	}
}

func (h *WatchlistHandler) internalError(c echo.Context, err error, msg string) error {
	h.Log.WithError(err).Error(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected error"})
}

// currentUserEmail extracts the authenticated user's email stored by the
// JWT middleware.
func currentUserEmail(c echo.Context) (string, error) {
	email, ok := c.Get(middleware.UserEmailKey).(string)
	if !ok || email == "" {
		return "", errors.New("no authenticated user in context")
	}
	return email, nil
}
