package user

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Repository errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

// Repository defines the interface for account reads and admin writes.
// Account creation happens in the auth package; both operate on the same
// users table.
type Repository interface {
	// Get retrieves a user by ID.
	Get(ctx context.Context, id int64) (*User, error)

	// List retrieves all users ordered by ID.
	List(ctx context.Context) ([]*User, error)

	// Update updates a user's mutable fields.
	Update(ctx context.Context, user *User) error

	// Delete deletes a user and all associated data.
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository is an in-memory implementation of Repository for
// testing.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]*User
	nextID int64
}

// NewInMemoryRepository creates a new in-memory user repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[int64]*User)}
}

// Seed inserts a user directly, assigning an ID. Test helper.
func (r *InMemoryRepository) Seed(user *User) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	user.ID = r.nextID

	stored := *user
	r.users[user.ID] = &stored
	return user
}

// Get retrieves a user by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

// List retrieves all users ordered by ID.
func (r *InMemoryRepository) List(_ context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Update updates a user's mutable fields.
func (r *InMemoryRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for _, existing := range r.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return ErrEmailTaken
		}
	}

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// Delete deletes a user.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
