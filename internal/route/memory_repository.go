package route

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing.
type InMemoryRepository struct {
	mu     sync.RWMutex
	routes map[int64]*Route
	nextID int64
}

// NewInMemoryRepository creates a new in-memory route repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{routes: make(map[int64]*Route)}
}

// Create persists a new route and assigns its ID.
func (r *InMemoryRepository) Create(_ context.Context, route *Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	route.ID = r.nextID

	stored := *route
	r.routes[route.ID] = &stored
	return nil
}

// ListByUser retrieves all routes saved by a user, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID int64) ([]*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []*Route
	for _, route := range r.routes {
		if route.UserID == userID {
			copied := *route
			routes = append(routes, &copied)
		}
	}
	sortNewestFirst(routes)
	return routes, nil
}

// Recent retrieves the user's most recently saved routes.
func (r *InMemoryRepository) Recent(ctx context.Context, userID int64, limit int) ([]*Route, error) {
	routes, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(routes) > limit {
		routes = routes[:limit]
	}
	return routes, nil
}

// GetByShareCode retrieves a route by its public share code.
func (r *InMemoryRepository) GetByShareCode(_ context.Context, code string) (*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		if route.ShareCode != nil && *route.ShareCode == code {
			copied := *route
			return &copied, nil
		}
	}
	return nil, ErrRouteNotFound
}

// ListAll retrieves every saved route, newest first.
func (r *InMemoryRepository) ListAll(_ context.Context) ([]*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []*Route
	for _, route := range r.routes {
		copied := *route
		routes = append(routes, &copied)
	}
	sortNewestFirst(routes)
	return routes, nil
}

// CountByUser reports how many routes a user has saved.
func (r *InMemoryRepository) CountByUser(_ context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, route := range r.routes {
		if route.UserID == userID {
			count++
		}
	}
	return count, nil
}

// Delete removes a route owned by the given user.
func (r *InMemoryRepository) Delete(_ context.Context, userID, routeID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.routes[routeID]
	if !ok || route.UserID != userID {
		return ErrRouteNotFound
	}
	delete(r.routes, routeID)
	return nil
}

func sortNewestFirst(routes []*Route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].CreatedAt.Equal(routes[j].CreatedAt) {
			return routes[i].ID > routes[j].ID
		}
		return routes[i].CreatedAt.After(routes[j].CreatedAt)
	})
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
