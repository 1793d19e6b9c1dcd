package incident

import "context"

// Repository defines the interface for incident persistence.
type Repository interface {
	// Create persists a new incident and assigns its ID.
	Create(ctx context.Context, incident *Incident) error

	// GetByID retrieves an incident by ID.
	GetByID(ctx context.Context, id int64) (*Incident, error)

	// ListActive retrieves all active incidents, newest first.
	ListActive(ctx context.Context) ([]*Incident, error)

	// ListAll retrieves every incident including inactive ones, newest first.
	ListAll(ctx context.Context) ([]*Incident, error)

	// ListNearby retrieves active incidents within radiusMeters of the
	// given coordinates.
	ListNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]*Incident, error)

	// AddVerification records a confirm/deny reaction and increments the
	// matching counter in a single atomic operation. Returns
	// ErrDuplicateVerification if the user has already reacted to the
	// incident, and the refreshed incident on success.
	AddVerification(ctx context.Context, incidentID, userID int64, confirmed bool) (*Verification, *Incident, error)

	// SetStatus updates the active flag and returns the refreshed incident.
	SetStatus(ctx context.Context, id int64, active bool) (*Incident, error)

	// Update applies an admin edit to an existing incident.
	Update(ctx context.Context, incident *Incident) error

	// Delete removes an incident. Administrative action only.
	Delete(ctx context.Context, id int64) error

	// Stats aggregates incident and verification counts.
	Stats(ctx context.Context) (*Stats, error)

	// StatsByUser aggregates reporting counts for a single user.
	StatsByUser(ctx context.Context, userID int64) (*UserStats, error)
}
