package route

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Validation constants.
const (
	MaxLabelLength = 200

	// DefaultRecentLimit is applied when the caller does not specify one.
	DefaultRecentLimit = 5

	// MaxRecentLimit caps the recent-routes query.
	MaxRecentLimit = 50

	// shareCodeBytes yields a 12-hex-char share code.
	shareCodeBytes = 6
)

// Service provides saved route operations.
type Service struct {
	repo Repository
}

// NewService creates a new route service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save persists a route for a user and assigns it a share code.
func (s *Service) Save(ctx context.Context, userID int64, input *models.RouteSaveRequest) (*models.SavedRoute, error) {
	if fieldErrors := validateSaveInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	code, err := generateShareCode()
	if err != nil {
		return nil, fmt.Errorf("generating share code: %w", err)
	}

	route := &Route{
		UserID:        userID,
		Origin:        input.Origin,
		Destination:   input.Destination,
		Data:          input.RouteData,
		AvoidTolls:    input.AvoidTolls,
		AvoidHighways: input.AvoidHighways,
		ShareCode:     &code,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, route); err != nil {
		return nil, err
	}

	result := route.ToAPI()
	return &result, nil
}

// ListByUser retrieves all routes saved by a user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.SavedRoute, error) {
	routes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAPIList(routes), nil
}

// Recent retrieves the user's most recently saved routes. A non-positive
// limit falls back to the default; oversized limits are capped.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]models.SavedRoute, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	routes, err := s.repo.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return toAPIList(routes), nil
}

// GetByShareCode retrieves a shared route. No ownership check: share codes
// are the public handle.
func (s *Service) GetByShareCode(ctx context.Context, code string) (*models.SavedRoute, error) {
	route, err := s.repo.GetByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	result := route.ToAPI()
	return &result, nil
}

// ListAll retrieves every saved route. Administrative action only.
func (s *Service) ListAll(ctx context.Context) ([]models.SavedRoute, error) {
	routes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toAPIList(routes), nil
}

// CountByUser reports how many routes a user has saved.
func (s *Service) CountByUser(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

// Delete removes a route owned by the given user.
func (s *Service) Delete(ctx context.Context, userID, routeID int64) error {
	return s.repo.Delete(ctx, userID, routeID)
}

func generateShareCode() (string, error) {
	buf := make([]byte, shareCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func validateSaveInput(input *models.RouteSaveRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	if input.Origin == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "origin", Message: "is required"})
	} else if len(input.Origin) > MaxLabelLength {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "origin", Message: "must be at most 200 characters"})
	}

	if input.Destination == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "destination", Message: "is required"})
	} else if len(input.Destination) > MaxLabelLength {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "destination", Message: "must be at most 200 characters"})
	}

	if len(input.RouteData.Legs) == 0 {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "routeData", Message: "must contain at least one leg"})
	}

	return fieldErrors
}

func toAPIList(routes []*Route) []models.SavedRoute {
	result := make([]models.SavedRoute, 0, len(routes))
	for _, route := range routes {
		result = append(result, route.ToAPI())
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
