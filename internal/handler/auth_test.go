package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-watchlist/internal/config"
	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/queue"
	"github.com/iliyamo/movie-watchlist/internal/repository"
	"github.com/iliyamo/movie-watchlist/internal/utils"
	"github.com/iliyamo/movie-watchlist/internal/validation"
)

// ----- mocks -----

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, email, username, password string, cost int) (model.User, error) {
	args := m.Called(ctx, email, username, password, cost)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) Activate(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "auth-test-secret",
		AccessTTLMin: 30,
		BcryptCost:   bcrypt.MinCost,
	}
}

func jsonDecode(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}

func jsonContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validation.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// ----- register -----

func TestRegisterSuccess(t *testing.T) {
	users := new(mockUserStore)
	events := new(mockPublisher)
	h := NewAuthHandler(testConfig(), users, events, quietLogger())

	created := model.User{
		ID:           1,
		Email:        "new@example.com",
		Username:     "newuser",
		RegisteredAt: time.Now().UTC(),
	}
	users.On("Create", mock.Anything, "new@example.com", "newuser", "longenough", bcrypt.MinCost).
		Return(created, nil)
	events.On("PublishUserRegistered", mock.Anything, mock.MatchedBy(func(ev queue.UserRegisteredEvent) bool {
		return ev.Email == "new@example.com" && ev.Username == "newuser"
	})).Return(nil)

	c, rec := jsonContext(t, http.MethodPost, "/v1/users",
		`{"email":"New@Example.com","username":"newuser","password":"longenough"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "successfully signed up")
	users.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := new(mockUserStore)
	h := NewAuthHandler(testConfig(), users, nil, quietLogger())

	users.On("Create", mock.Anything, "taken@example.com", "someone", "longenough", bcrypt.MinCost).
		Return(model.User{}, repository.ErrEmailExists)

	c, rec := jsonContext(t, http.MethodPost, "/v1/users",
		`{"email":"taken@example.com","username":"someone","password":"longenough"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "taken@example.com is already attached to a registered user")
	users.AssertExpectations(t)
}

func TestRegisterInvalidBody(t *testing.T) {
	users := new(mockUserStore)
	h := NewAuthHandler(testConfig(), users, nil, quietLogger())

	c, _ := jsonContext(t, http.MethodPost, "/v1/users",
		`{"email":"not-an-email","username":"someone","password":"short"}`)
	err := h.Register(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	users.AssertNotCalled(t, "Create")
}

func TestRegisterPublishFailureStillSucceeds(t *testing.T) {
	users := new(mockUserStore)
	events := new(mockPublisher)
	h := NewAuthHandler(testConfig(), users, events, quietLogger())

	users.On("Create", mock.Anything, "new@example.com", "newuser", "longenough", bcrypt.MinCost).
		Return(model.User{Email: "new@example.com", Username: "newuser", RegisteredAt: time.Now()}, nil)
	events.On("PublishUserRegistered", mock.Anything, mock.Anything).
		Return(assert.AnError)

	c, rec := jsonContext(t, http.MethodPost, "/v1/users",
		`{"email":"new@example.com","username":"newuser","password":"longenough"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	events.AssertExpectations(t)
}

// ----- activation -----

func TestActivateSuccess(t *testing.T) {
	users := new(mockUserStore)
	h := NewAuthHandler(testConfig(), users, nil, quietLogger())

	users.On("Activate", mock.Anything, "u@example.com").
		Return(model.User{ID: 1, Email: "u@example.com", Activated: true}, nil)

	c, rec := jsonContext(t, http.MethodGet, "/v1/users/activate?email=u@example.com", "")
	require.NoError(t, h.Activate(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"activated":true`)
	users.AssertExpectations(t)
}

func TestActivateUnknownEmail(t *testing.T) {
	users := new(mockUserStore)
	h := NewAuthHandler(testConfig(), users, nil, quietLogger())

	users.On("Activate", mock.Anything, "ghost@example.com").
		Return(model.User{}, repository.ErrUserNotFound)

	c, rec := jsonContext(t, http.MethodGet, "/v1/users/activate?email=ghost@example.com", "")
	require.NoError(t, h.Activate(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "There is no user registered with email ghost@example.com.")
}

func TestActivateMissingEmail(t *testing.T) {
	h := NewAuthHandler(testConfig(), new(mockUserStore), nil, quietLogger())

	c, rec := jsonContext(t, http.MethodGet, "/v1/users/activate", "")
	require.NoError(t, h.Activate(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ----- login -----

func TestLoginSuccess(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	users := new(mockUserStore)
	cfg := testConfig()
	h := NewAuthHandler(cfg, users, nil, quietLogger())

	users.On("GetByEmail", mock.Anything, "u@example.com").
		Return(model.User{Email: "u@example.com", PasswordHash: hash, Activated: true}, nil)

	c, rec := jsonContext(t, http.MethodPost, "/v1/token",
		`{"email":"u@example.com","password":"correct-horse"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResp
	require.NoError(t, jsonDecode(rec, &resp))
	assert.Equal(t, "bearer", resp.TokenType)

	subject, err := utils.ParseSubject(cfg.JWTSecret, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", subject)
}

// Unknown email and wrong password must be indistinguishable to the
// caller.
func TestLoginFailuresLookIdentical(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	users := new(mockUserStore)
	h := NewAuthHandler(testConfig(), users, nil, quietLogger())

	users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(model.User{}, sql.ErrNoRows)
	users.On("GetByEmail", mock.Anything, "u@example.com").
		Return(model.User{Email: "u@example.com", PasswordHash: hash}, nil)

	c1, rec1 := jsonContext(t, http.MethodPost, "/v1/token",
		`{"email":"ghost@example.com","password":"whatever1"}`)
	require.NoError(t, h.Login(c1))

	c2, rec2 := jsonContext(t, http.MethodPost, "/v1/token",
		`{"email":"u@example.com","password":"wrong-password"}`)
	require.NoError(t, h.Login(c2))

	assert.Equal(t, http.StatusUnauthorized, rec1.Code)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
}
