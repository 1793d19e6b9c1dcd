package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Validation constants.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MaxNameLength     = 100
)

// Service provides profile and account administration operations.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a user's profile.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result := user.ToAPI()
	return &result, nil
}

// List retrieves all accounts. Administrative action only.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.User, 0, len(users))
	for _, user := range users {
		result = append(result, user.ToAPI())
	}
	return result, nil
}

// Update applies a partial update to an account.
func (s *Service) Update(ctx context.Context, id int64, input *models.UserUpdateRequest) (*models.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if fieldErrors := validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Name != nil {
		if *input.Name == "" {
			user.Name = nil
		} else {
			user.Name = input.Name
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	result := user.ToAPI()
	return &result, nil
}

// Delete removes an account and everything that hangs off it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateUpdateInput(input *models.UserUpdateRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   "username",
				Message: "must be between 3 and 32 characters",
			})
		}
	}
	if input.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*input.Email)); err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   "email",
				Message: "must be a valid email address",
			})
		}
	}
	if input.Name != nil && len(*input.Name) > MaxNameLength {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "name",
			Message: "must be at most 100 characters",
		})
	}

	return fieldErrors
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
