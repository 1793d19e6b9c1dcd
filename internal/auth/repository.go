package auth

import "context"

// UserRepository defines the persistence interface for accounts used during
// registration and login.
type UserRepository interface {
	// Create persists a new user and assigns its ID.
	// Returns ErrUsernameTaken or ErrEmailTaken on uniqueness violations.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// RefreshTokenRepository defines the persistence interface for refresh tokens.
type RefreshTokenRepository interface {
	// Create persists a new refresh token.
	Create(ctx context.Context, token *RefreshToken) error

	// GetByToken retrieves a refresh token by its opaque value.
	// Returns ErrInvalidRefreshToken if no such token exists.
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)

	// Revoke marks a refresh token as revoked.
	Revoke(ctx context.Context, id string) error

	// RevokeAllForUser marks all of a user's refresh tokens as revoked.
	RevokeAllForUser(ctx context.Context, userID int64) error
}
