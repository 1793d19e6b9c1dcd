package incident

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/roadpulse/roadpulse/pkg/geo"
)

// InMemoryRepository is an in-memory implementation of Repository for testing.
type InMemoryRepository struct {
	mu             sync.RWMutex
	incidents      map[int64]*Incident
	verifications  map[int64]*Verification
	byUser         map[string]int64 // "incidentID:userID" -> verification ID
	nextIncidentID int64
	nextVerifyID   int64
}

// NewInMemoryRepository creates a new in-memory incident repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		incidents:     make(map[int64]*Incident),
		verifications: make(map[int64]*Verification),
		byUser:        make(map[string]int64),
	}
}

func verificationKey(incidentID, userID int64) string {
	return strconv.FormatInt(incidentID, 10) + ":" + strconv.FormatInt(userID, 10)
}

// Create persists a new incident and assigns its ID.
func (r *InMemoryRepository) Create(_ context.Context, incident *Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextIncidentID++
	incident.ID = r.nextIncidentID

	stored := *incident
	r.incidents[incident.ID] = &stored
	return nil
}

// GetByID retrieves an incident by ID.
func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (*Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	incident, ok := r.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}

	copied := *incident
	return &copied, nil
}

// ListActive retrieves all active incidents, newest first.
func (r *InMemoryRepository) ListActive(_ context.Context) ([]*Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var incidents []*Incident
	for _, incident := range r.incidents {
		if incident.Active {
			copied := *incident
			incidents = append(incidents, &copied)
		}
	}
	sortNewestFirst(incidents)
	return incidents, nil
}

// ListAll retrieves every incident including inactive ones, newest first.
func (r *InMemoryRepository) ListAll(_ context.Context) ([]*Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var incidents []*Incident
	for _, incident := range r.incidents {
		copied := *incident
		incidents = append(incidents, &copied)
	}
	sortNewestFirst(incidents)
	return incidents, nil
}

// ListNearby retrieves active incidents within radiusMeters of the given
// coordinates, nearest first. Incidents with unparseable coordinates are
// skipped.
func (r *InMemoryRepository) ListNearby(_ context.Context, lat, lon, radiusMeters float64) ([]*Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type withDistance struct {
		incident *Incident
		distance float64
	}

	var nearby []withDistance
	for _, incident := range r.incidents {
		if !incident.Active {
			continue
		}
		iLat, err := strconv.ParseFloat(incident.Latitude, 64)
		if err != nil {
			continue
		}
		iLon, err := strconv.ParseFloat(incident.Longitude, 64)
		if err != nil {
			continue
		}
		d := geo.Haversine(lat, lon, iLat, iLon)
		if d <= radiusMeters {
			copied := *incident
			nearby = append(nearby, withDistance{incident: &copied, distance: d})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].distance < nearby[j].distance
	})

	incidents := make([]*Incident, 0, len(nearby))
	for _, n := range nearby {
		incidents = append(incidents, n.incident)
	}
	return incidents, nil
}

// AddVerification records a reaction and bumps the matching counter under a
// single lock acquisition.
func (r *InMemoryRepository) AddVerification(_ context.Context, incidentID, userID int64, confirmed bool) (*Verification, *Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	incident, ok := r.incidents[incidentID]
	if !ok {
		return nil, nil, ErrIncidentNotFound
	}

	key := verificationKey(incidentID, userID)
	if _, exists := r.byUser[key]; exists {
		return nil, nil, ErrDuplicateVerification
	}

	now := time.Now()

	r.nextVerifyID++
	verification := &Verification{
		ID:          r.nextVerifyID,
		IncidentID:  incidentID,
		UserID:      userID,
		IsConfirmed: confirmed,
		CreatedAt:   now,
	}
	r.verifications[verification.ID] = verification
	r.byUser[key] = verification.ID

	if confirmed {
		incident.Confirmed++
	} else {
		incident.Refuted++
	}
	incident.UpdatedAt = &now

	verifyCopy := *verification
	incidentCopy := *incident
	return &verifyCopy, &incidentCopy, nil
}

// SetStatus updates the active flag and returns the refreshed incident.
func (r *InMemoryRepository) SetStatus(_ context.Context, id int64, active bool) (*Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	incident, ok := r.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}

	now := time.Now()
	incident.Active = active
	incident.UpdatedAt = &now

	copied := *incident
	return &copied, nil
}

// Update applies an admin edit to an existing incident.
func (r *InMemoryRepository) Update(_ context.Context, incident *Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[incident.ID]; !ok {
		return ErrIncidentNotFound
	}

	stored := *incident
	r.incidents[incident.ID] = &stored
	return nil
}

// Delete removes an incident and its verifications.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[id]; !ok {
		return ErrIncidentNotFound
	}
	delete(r.incidents, id)

	for vid, v := range r.verifications {
		if v.IncidentID == id {
			delete(r.byUser, verificationKey(v.IncidentID, v.UserID))
			delete(r.verifications, vid)
		}
	}
	return nil
}

// Stats aggregates incident and verification counts.
func (r *InMemoryRepository) Stats(_ context.Context) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &Stats{ByType: make(map[string]int)}
	for _, incident := range r.incidents {
		stats.Total++
		if incident.Active {
			stats.Active++
		}
		stats.ByType[incident.Type]++
	}
	stats.Verifications = len(r.verifications)
	return stats, nil
}

// StatsByUser aggregates reporting counts for a single user.
func (r *InMemoryRepository) StatsByUser(_ context.Context, userID int64) (*UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &UserStats{ByType: make(map[string]int)}
	for _, incident := range r.incidents {
		if incident.ReportedBy != userID {
			continue
		}
		stats.Total++
		stats.ByType[incident.Type]++
	}
	return stats, nil
}

func sortNewestFirst(incidents []*Incident) {
	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
