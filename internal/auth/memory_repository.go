package auth

import (
	"context"
	"sync"
	"time"
)

// InMemoryUserRepository is an in-memory implementation of UserRepository.
// This is intended for testing. Production should use PostgresUserRepository.
type InMemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

// NewInMemoryUserRepository creates a new in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[int64]*User)}
}

// Create persists a new user and assigns its ID.
func (r *InMemoryUserRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}

	r.nextID++
	user.ID = r.nextID

	cpy := *user
	r.users[user.ID] = &cpy
	return nil
}

// GetByID retrieves a user by ID.
func (r *InMemoryUserRepository) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	cpy := *u
	return &cpy, nil
}

// GetByUsername retrieves a user by username.
func (r *InMemoryUserRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByEmail retrieves a user by email.
func (r *InMemoryUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, ErrUserNotFound
}

// InMemoryRefreshTokenRepository is an in-memory implementation of
// RefreshTokenRepository for testing.
type InMemoryRefreshTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*RefreshToken // keyed by opaque token value
}

// NewInMemoryRefreshTokenRepository creates a new in-memory refresh token repository.
func NewInMemoryRefreshTokenRepository() *InMemoryRefreshTokenRepository {
	return &InMemoryRefreshTokenRepository{tokens: make(map[string]*RefreshToken)}
}

// Create persists a new refresh token.
func (r *InMemoryRefreshTokenRepository) Create(_ context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *token
	r.tokens[token.Token] = &cpy
	return nil
}

// GetByToken retrieves a refresh token by its opaque value.
func (r *InMemoryRefreshTokenRepository) GetByToken(_ context.Context, token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tokens[token]
	if !ok {
		return nil, ErrInvalidRefreshToken
	}

	cpy := *rt
	return &cpy, nil
}

// Revoke marks a refresh token as revoked.
func (r *InMemoryRefreshTokenRepository) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, rt := range r.tokens {
		if rt.ID == id && rt.RevokedAt == nil {
			rt.RevokedAt = &now
		}
	}
	return nil
}

// RevokeAllForUser marks all of a user's refresh tokens as revoked.
func (r *InMemoryRefreshTokenRepository) RevokeAllForUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, rt := range r.tokens {
		if rt.UserID == userID && rt.RevokedAt == nil {
			rt.RevokedAt = &now
		}
	}
	return nil
}

// Interface checks.
var (
	_ UserRepository         = (*InMemoryUserRepository)(nil)
	_ RefreshTokenRepository = (*InMemoryRefreshTokenRepository)(nil)
)
