package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/config"
	"github.com/iliyamo/movie-watchlist/internal/queue"
	"github.com/iliyamo/movie-watchlist/internal/repository"
	"github.com/iliyamo/movie-watchlist/internal/utils"
)

// AuthHandler bundles dependencies for signup, activation and login.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Events RegistrationPublisher
	Log    *logrus.Logger
}

func NewAuthHandler(cfg config.Config, users UserStore, events RegistrationPublisher, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Events: events, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expires     time.Time `json:"expires"`
}

// Register creates a user and queues the activation email. The unique
// key on users.email makes concurrent duplicate signups resolve to one
// success and one duplicate failure.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Username, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": fmt.Sprintf("Email %s is already attached to a registered user. Try to login.", req.Email),
			})
		}
		return h.internalError(c, err, "create user failed")
	}

	// Delivery is best-effort: the worker owns retries, and a broker
	// outage must not undo a committed signup.
	if h.Events != nil {
		ev := queue.UserRegisteredEvent{
			Email:        u.Email,
			Username:     u.Username,
			RegisteredAt: u.RegisteredAt.UTC().Format(time.RFC3339),
		}
		if err := h.Events.PublishUserRegistered(ctx, ev); err != nil {
			h.Log.WithError(err).WithField("email", u.Email).Warn("queue activation email failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"result": "You have successfully signed up. A verification email has been sent to your email address with a link to activate your account.",
	})
}

// Activate flips the account to active. Visiting the link again after
// activation still succeeds and returns the user.
func (h *AuthHandler) Activate(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email query parameter is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Activate(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": fmt.Sprintf("There is no user registered with email %s.", email),
			})
		}
		return h.internalError(c, err, "activate user failed")
	}
	return c.JSON(http.StatusOK, u)
}

// Login verifies credentials and mints an access token. The failure
// response is identical whether the email is unknown or the password is
// wrong, so callers cannot probe which emails are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid user email or password."})
		}
		return h.internalError(c, err, "query user failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid user email or password."})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return h.internalError(c, err, "issue access token failed")
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: access.Token,
		TokenType:   "bearer",
		Expires:     access.Exp,
	})
}

func (h *AuthHandler) internalError(c echo.Context, err error, msg string) error {
	h.Log.WithError(err).Error(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected error"})
}
