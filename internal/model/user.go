package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The email address is the stable identity: it is unique, it is
// the JWT subject, and the watchlist references users by it.  The numeric
// ID exists only as a surrogate key.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address; primary identity.
//  Username     – display name shown in user-facing messages.
//  PasswordHash – bcrypt hashed password; never transitions after signup.
//  Activated    – whether the activation link has been visited.
//  RegisteredAt – timestamp of signup.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Activated    bool      `json:"activated"`
	RegisteredAt time.Time `json:"registered_at"`
}
