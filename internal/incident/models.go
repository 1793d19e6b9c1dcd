// Package incident provides the canonical store for reported road incidents
// and the aggregation of confirm/refute verifications.
package incident

import (
	"errors"
	"time"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Repository errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")

	// ErrDuplicateVerification is returned when a user has already
	// confirmed or refuted an incident. This is a rejected business rule,
	// not an exceptional failure.
	ErrDuplicateVerification = errors.New("user has already verified this incident")
)

// Incident represents a reported road condition.
// Latitude and longitude are kept as decimal strings end to end so the
// precision reported by the client survives the round trip.
type Incident struct {
	ID         int64
	Type       string
	Latitude   string
	Longitude  string
	Comment    *string
	ReportedBy int64
	Active     bool
	Confirmed  int
	Refuted    int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Verification represents a single user's confirm/deny reaction.
type Verification struct {
	ID          int64
	IncidentID  int64
	UserID      int64
	IsConfirmed bool
	CreatedAt   time.Time
}

// Stats aggregates reporting activity.
type Stats struct {
	Total         int
	Active        int
	ByType        map[string]int
	Verifications int
}

// UserStats aggregates one user's reporting activity.
type UserStats struct {
	Total  int
	ByType map[string]int
}

// ToAPI converts a domain Incident to its wire representation.
func (i *Incident) ToAPI() models.Incident {
	var updatedAt *models.Timestamp
	if i.UpdatedAt != nil {
		ts := models.Timestamp(*i.UpdatedAt)
		updatedAt = &ts
	}
	return models.Incident{
		ID:         i.ID,
		Type:       i.Type,
		Latitude:   i.Latitude,
		Longitude:  i.Longitude,
		Comment:    i.Comment,
		ReportedBy: i.ReportedBy,
		Active:     i.Active,
		Confirmed:  i.Confirmed,
		Refuted:    i.Refuted,
		CreatedAt:  models.Timestamp(i.CreatedAt),
		UpdatedAt:  updatedAt,
	}
}

// ToAPI converts a domain Verification to its wire representation.
func (v *Verification) ToAPI() models.Verification {
	return models.Verification{
		ID:          v.ID,
		IncidentID:  v.IncidentID,
		UserID:      v.UserID,
		IsConfirmed: v.IsConfirmed,
		CreatedAt:   models.Timestamp(v.CreatedAt),
	}
}
