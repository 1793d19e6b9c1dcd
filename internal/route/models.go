// Package route persists user-saved routes and their share codes.
package route

import (
	"errors"
	"time"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Repository errors.
var (
	ErrRouteNotFound = errors.New("route not found")
)

// Route represents a saved route. Data holds the validated geometry and
// summary from the mapping provider.
type Route struct {
	ID            int64
	UserID        int64
	Origin        string
	Destination   string
	Data          models.RouteData
	AvoidTolls    bool
	AvoidHighways bool
	ShareCode     *string
	CreatedAt     time.Time
}

// ToAPI converts a domain Route to its wire representation.
func (r *Route) ToAPI() models.SavedRoute {
	return models.SavedRoute{
		ID:            r.ID,
		UserID:        r.UserID,
		Origin:        r.Origin,
		Destination:   r.Destination,
		RouteData:     r.Data,
		AvoidTolls:    r.AvoidTolls,
		AvoidHighways: r.AvoidHighways,
		ShareCode:     r.ShareCode,
		CreatedAt:     models.Timestamp(r.CreatedAt),
	}
}
