package route

import "context"

// Repository defines the interface for saved route persistence.
type Repository interface {
	// Create persists a new route and assigns its ID.
	Create(ctx context.Context, route *Route) error

	// ListByUser retrieves all routes saved by a user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*Route, error)

	// Recent retrieves the user's most recently saved routes.
	Recent(ctx context.Context, userID int64, limit int) ([]*Route, error)

	// GetByShareCode retrieves a route by its public share code.
	GetByShareCode(ctx context.Context, code string) (*Route, error)

	// ListAll retrieves every saved route. Administrative action only.
	ListAll(ctx context.Context) ([]*Route, error)

	// CountByUser reports how many routes a user has saved.
	CountByUser(ctx context.Context, userID int64) (int, error)

	// Delete removes a route owned by the given user.
	Delete(ctx context.Context, userID, routeID int64) error
}
