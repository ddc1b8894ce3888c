package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/repository"
)

type mockMovieStore struct{ mock.Mock }

func (m *mockMovieStore) Create(ctx context.Context, title string, releaseDate time.Time, category, summary *string) (model.Movie, error) {
	args := m.Called(ctx, title, releaseDate, category, summary)
	return args.Get(0).(model.Movie), args.Error(1)
}

func (m *mockMovieStore) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Movie), args.Error(1)
}

func (m *mockMovieStore) List(ctx context.Context) ([]model.Movie, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Movie), args.Error(1)
}

func (m *mockMovieStore) Search(ctx context.Context, keyword string) ([]model.Movie, error) {
	args := m.Called(ctx, keyword)
	return args.Get(0).([]model.Movie), args.Error(1)
}

func (m *mockMovieStore) ListUpcoming(ctx context.Context, now time.Time) ([]model.Movie, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]model.Movie), args.Error(1)
}

func (m *mockMovieStore) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateMovie(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	release := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)
	movies.On("Create", mock.Anything, "Blade Runner", release, (*string)(nil), (*string)(nil)).
		Return(model.Movie{ID: 1, Title: "Blade Runner", ReleaseDate: release}, nil)

	c, rec := jsonContext(t, http.MethodPost, "/v1/movies",
		`{"title":"Blade Runner","release_date":"2026-12-25T00:00:00Z"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got model.Movie
	require.NoError(t, jsonDecode(rec, &got))
	assert.Equal(t, uint64(1), got.ID)
	movies.AssertExpectations(t)
}

func TestCreateMovieMissingTitle(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	c, _ := jsonContext(t, http.MethodPost, "/v1/movies",
		`{"release_date":"2026-12-25T00:00:00Z"}`)
	err := h.Create(c)

	require.Error(t, err)
	movies.AssertNotCalled(t, "Create")
}

func TestGetMovieNotFound(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	movies.On("GetByID", mock.Anything, uint64(999)).
		Return(model.Movie{}, repository.ErrMovieNotFound)

	c, rec := jsonContext(t, http.MethodGet, "/v1/movies/999", "")
	c.SetPath("/v1/movies/:id")
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "There is no movie with ID 999.")
}

func TestGetMovieBadID(t *testing.T) {
	h := NewMovieHandler(new(mockMovieStore), quietLogger())

	c, rec := jsonContext(t, http.MethodGet, "/v1/movies/abc", "")
	c.SetPath("/v1/movies/:id")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMoviesEmptyCatalog(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	movies.On("List", mock.Anything).Return([]model.Movie{}, nil)

	c, rec := jsonContext(t, http.MethodGet, "/v1/movies", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSearchRequiresKeyword(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	c, rec := jsonContext(t, http.MethodGet, "/v1/movies/search", "")
	require.NoError(t, h.Search(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	movies.AssertNotCalled(t, "Search")
}

func TestSearchMovies(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	movies.On("Search", mock.Anything, "runner").
		Return([]model.Movie{{ID: 1, Title: "Blade Runner"}}, nil)

	c, rec := jsonContext(t, http.MethodGet, "/v1/movies/search?keyword=runner", "")
	require.NoError(t, h.Search(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Blade Runner")
	movies.AssertExpectations(t)
}

func TestDeleteMovieConflict(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	movies.On("Delete", mock.Anything, uint64(7)).Return(repository.ErrConflict)

	c, rec := jsonContext(t, http.MethodDelete, "/v1/movies/7", "")
	c.SetPath("/v1/movies/:id")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "still present in watchlists")
}

func TestDeleteMovieSuccess(t *testing.T) {
	movies := new(mockMovieStore)
	h := NewMovieHandler(movies, quietLogger())

	movies.On("Delete", mock.Anything, uint64(7)).Return(nil)

	c, rec := jsonContext(t, http.MethodDelete, "/v1/movies/7", "")
	c.SetPath("/v1/movies/:id")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Movie with ID 7 has been deleted successfully.")
}
