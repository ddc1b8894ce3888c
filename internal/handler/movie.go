package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/repository"
)

// MovieHandler exposes the shared movie catalog. Catalog routes carry no
// authentication: movies have no owner.
type MovieHandler struct {
	Movies MovieStore
	Log    *logrus.Logger
}

func NewMovieHandler(movies MovieStore, log *logrus.Logger) *MovieHandler {
	return &MovieHandler{Movies: movies, Log: log}
}

type movieReq struct {
	Title       string    `json:"title" validate:"required"`
	ReleaseDate time.Time `json:"release_date" validate:"required"`
	Category    *string   `json:"category"`
	Summary     *string   `json:"summary"`
}

// Create handles POST /v1/movies.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.Create(ctx, req.Title, req.ReleaseDate, req.Category, req.Summary)
	if err != nil {
		return h.internalError(c, err, "create movie failed")
	}
	return c.JSON(http.StatusOK, m)
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := movieIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": fmt.Sprintf("There is no movie with ID %d.", id),
			})
		}
		return h.internalError(c, err, "get movie failed")
	}
	return c.JSON(http.StatusOK, m)
}

// List handles GET /v1/movies. An empty catalog yields an empty array.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.List(ctx)
	if err != nil {
		return h.internalError(c, err, "list movies failed")
	}
	return c.JSON(http.StatusOK, movies)
}

// Search handles GET /v1/movies/search?keyword=.
func (h *MovieHandler) Search(c echo.Context) error {
	keyword := c.QueryParam("keyword")
	if keyword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "keyword query parameter is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.Search(ctx, keyword)
	if err != nil {
		return h.internalError(c, err, "search movies failed")
	}
	return c.JSON(http.StatusOK, movies)
}

// Upcoming handles GET /v1/movies/upcoming: movies releasing strictly
// after the time of the request.
func (h *MovieHandler) Upcoming(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.ListUpcoming(ctx, time.Now().UTC())
	if err != nil {
		return h.internalError(c, err, "list upcoming movies failed")
	}
	return c.JSON(http.StatusOK, movies)
}

// Delete handles DELETE /v1/movies/:id. Deletion is restricted while any
// watchlist still references the movie.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := movieIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": fmt.Sprintf("There is no movie with ID %d.", id),
			})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"error": fmt.Sprintf("Movie with ID %d is still present in watchlists.", id),
			})
		default:
			return h.internalError(c, err, "delete movie failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"result": fmt.Sprintf("Movie with ID %d has been deleted successfully.", id),
	})
}

func (h *MovieHandler) internalError(c echo.Context, err error, msg string) error {
	h.Log.WithError(err).Error(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected error"})
}

func movieIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid movie id")
	}
	return id, nil
}
