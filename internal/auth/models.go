// Package auth provides credential-based authentication for RoadPulse.
package auth

import (
	"errors"
	"time"
)

// Repository and service errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User represents an account as stored in the users table.
type User struct {
	ID           int64
	Username     string
	Email        string
	Name         *string
	PasswordHash string
	CreatedAt    time.Time
}

// RefreshToken represents a refresh token stored in the database.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
