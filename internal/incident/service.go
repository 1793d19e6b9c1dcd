package incident

import (
	"context"
	"strconv"
	"time"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Validation constants.
const (
	MaxCommentLength = 500

	// DefaultNearbyRadiusMeters is the relevance radius applied when the
	// caller does not specify one.
	DefaultNearbyRadiusMeters = 5000
)

// Broadcaster pushes incident lifecycle events to connected clients. The
// service never blocks on delivery; a nil Broadcaster disables push.
type Broadcaster interface {
	IncidentCreated(incident models.Incident)
	IncidentUpdated(incident models.Incident)
	IncidentStatusChanged(incident models.Incident)
}

// Service provides incident reporting and verification operations.
type Service struct {
	repo        Repository
	broadcaster Broadcaster
}

// NewService creates a new incident service. broadcaster may be nil.
func NewService(repo Repository, broadcaster Broadcaster) *Service {
	return &Service{repo: repo, broadcaster: broadcaster}
}

// Report records a new incident and announces it to connected clients.
func (s *Service) Report(ctx context.Context, userID int64, input *models.IncidentCreateRequest) (*models.Incident, error) {
	if fieldErrors := validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	incident := &Incident{
		Type:       input.Type,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Comment:    normalizeComment(input.Comment),
		ReportedBy: userID,
		Active:     true,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, err
	}

	result := incident.ToAPI()
	if s.broadcaster != nil {
		s.broadcaster.IncidentCreated(result)
	}
	return &result, nil
}

// Get retrieves a single incident by ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Incident, error) {
	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := incident.ToAPI()
	return &result, nil
}

// ListActive retrieves all currently active incidents.
func (s *Service) ListActive(ctx context.Context) ([]models.Incident, error) {
	incidents, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toAPIList(incidents), nil
}

// ListAll retrieves every incident including resolved ones.
func (s *Service) ListAll(ctx context.Context) ([]models.Incident, error) {
	incidents, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toAPIList(incidents), nil
}

// Nearby retrieves active incidents within radiusMeters of the given
// coordinates. A non-positive radius falls back to the default.
func (s *Service) Nearby(ctx context.Context, lat, lon, radiusMeters float64) ([]models.Incident, error) {
	if lat < -90 || lat > 90 {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "lat", Message: "must be between -90 and 90"},
		}}
	}
	if lon < -180 || lon > 180 {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "lon", Message: "must be between -180 and 180"},
		}}
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadiusMeters
	}

	incidents, err := s.repo.ListNearby(ctx, lat, lon, radiusMeters)
	if err != nil {
		return nil, err
	}
	return toAPIList(incidents), nil
}

// Verify records a confirm/deny reaction from a user and announces the
// updated counters. Each user may react to an incident at most once;
// repeats surface ErrDuplicateVerification.
func (s *Service) Verify(ctx context.Context, incidentID, userID int64, confirmed bool) (*models.Verification, *models.Incident, error) {
	verification, incident, err := s.repo.AddVerification(ctx, incidentID, userID, confirmed)
	if err != nil {
		return nil, nil, err
	}

	verificationAPI := verification.ToAPI()
	incidentAPI := incident.ToAPI()
	if s.broadcaster != nil {
		s.broadcaster.IncidentUpdated(incidentAPI)
	}
	return &verificationAPI, &incidentAPI, nil
}

// SetStatus activates or resolves an incident and announces the change.
func (s *Service) SetStatus(ctx context.Context, id int64, active bool) (*models.Incident, error) {
	incident, err := s.repo.SetStatus(ctx, id, active)
	if err != nil {
		return nil, err
	}

	result := incident.ToAPI()
	if s.broadcaster != nil {
		s.broadcaster.IncidentStatusChanged(result)
	}
	return &result, nil
}

// Update applies an administrative edit and announces the change.
func (s *Service) Update(ctx context.Context, id int64, input *models.IncidentUpdateRequest) (*models.Incident, error) {
	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fieldErrors := validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Type != nil {
		incident.Type = *input.Type
	}
	if input.Comment != nil {
		incident.Comment = normalizeComment(input.Comment)
	}
	if input.Active != nil {
		incident.Active = *input.Active
	}
	now := time.Now()
	incident.UpdatedAt = &now

	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, err
	}

	result := incident.ToAPI()
	if s.broadcaster != nil {
		s.broadcaster.IncidentUpdated(result)
	}
	return &result, nil
}

// Delete removes an incident permanently. Administrative action only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Stats aggregates reporting activity for the statistics endpoint.
func (s *Service) Stats(ctx context.Context) (*models.IncidentStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &models.IncidentStats{
		Total:         stats.Total,
		Active:        stats.Active,
		Resolved:      stats.Total - stats.Active,
		ByType:        stats.ByType,
		Verifications: stats.Verifications,
	}, nil
}

// UserStats aggregates one user's reporting activity. Saved route counts
// live outside this package; the statistics endpoint merges them in.
func (s *Service) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	stats, err := s.repo.StatsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserStats{
		TotalReported: stats.Total,
		ByType:        stats.ByType,
	}, nil
}

func validateCreateInput(input *models.IncidentCreateRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	if !models.ValidIncidentType(input.Type) {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "type",
			Message: "must be one of: accident, traffic, closure, police, hazard, obstacle",
		})
	}
	fieldErrors = append(fieldErrors, validateCoordinate("latitude", input.Latitude, 90)...)
	fieldErrors = append(fieldErrors, validateCoordinate("longitude", input.Longitude, 180)...)
	if input.Comment != nil && len(*input.Comment) > MaxCommentLength {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "comment",
			Message: "must be at most 500 characters",
		})
	}

	return fieldErrors
}

func validateUpdateInput(input *models.IncidentUpdateRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	if input.Type != nil && !models.ValidIncidentType(*input.Type) {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "type",
			Message: "must be one of: accident, traffic, closure, police, hazard, obstacle",
		})
	}
	if input.Comment != nil && len(*input.Comment) > MaxCommentLength {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "comment",
			Message: "must be at most 500 characters",
		})
	}

	return fieldErrors
}

// validateCoordinate checks that value is a decimal string within ±bound.
func validateCoordinate(field, value string, bound float64) []models.FieldError {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return []models.FieldError{{Field: field, Message: "must be a decimal number"}}
	}
	if parsed < -bound || parsed > bound {
		return []models.FieldError{{
			Field:   field,
			Message: "must be between -" + strconv.FormatFloat(bound, 'f', -1, 64) + " and " + strconv.FormatFloat(bound, 'f', -1, 64),
		}}
	}
	return nil
}

// normalizeComment treats empty and whitespace-free empty strings as absent.
func normalizeComment(comment *string) *string {
	if comment == nil || *comment == "" {
		return nil
	}
	return comment
}

func toAPIList(incidents []*Incident) []models.Incident {
	result := make([]models.Incident, 0, len(incidents))
	for _, incident := range incidents {
		result = append(result, incident.ToAPI())
	}
	return result
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Errors[0].Field + " " + e.Errors[0].Message
}
