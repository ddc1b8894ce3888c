package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "id,email,username,password_hash,activated,registered_at"

// Create inserts a user with a freshly hashed password and returns the
// stored record. The unique key on users.email is the single source of
// truth for duplicate detection: a concurrent duplicate signup loses the
// race inside MySQL and surfaces here as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, username, password string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash) VALUES (?,?,?)",
		email, username, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByEmail(ctx, email)
}

// GetByEmail fetches a user by normalized email. Missing users surface
// as sql.ErrNoRows so callers decide how to present the failure.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Activated, &u.RegisteredAt)
	return u, err
}

// Activate flips the activated flag and returns the user. Activating an
// already-active user is not an error; the update is a no-op and the
// current record is returned. A missing user yields ErrUserNotFound.
func (r *UserRepo) Activate(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET activated=1 WHERE email=?", email); err != nil {
		return model.User{}, err
	}
	u, err := r.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
