package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/utils"
)

// UserResolver resolves a token subject to a registered user. It is
// satisfied by repository.UserRepo.
type UserResolver interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// UserEmailKey is the echo context key under which the authenticated
// user's email is stored for downstream handlers.
const UserEmailKey = "user_email"

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and resolves its subject against the user directory. Protected
// handlers only ever see an existing user's email via c.Get(UserEmailKey).
// Every rejection (missing header, bad signature, expiry, or a subject
// that no longer exists) answers 401 with a WWW-Authenticate challenge.
func JWTAuth(secret string, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			email, err := utils.ParseSubject(secret, raw)
			if err != nil {
				return unauthorized(c, "could not validate bearer token")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByEmail(ctx, email)
			if err != nil {
				// A valid token whose subject vanished is just as
				// unauthorized as a forged one.
				return unauthorized(c, "could not validate credentials")
			}

			c.Set(UserEmailKey, u.Email)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}
