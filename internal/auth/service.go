package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Validation constants.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit
)

// Service provides registration, login and token lifecycle operations.
type Service struct {
	jwtService  *JWTService
	userRepo    UserRepository
	refreshRepo RefreshTokenRepository
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	JWTService  *JWTService
	UserRepo    UserRepository
	RefreshRepo RefreshTokenRepository
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		jwtService:  cfg.JWTService,
		userRepo:    cfg.UserRepo,
		refreshRepo: cfg.RefreshRepo,
	}
}

// Register creates a new account and returns the user with a token pair.
func (s *Service) Register(ctx context.Context, input *models.RegisterRequest) (*User, *models.TokenPair, error) {
	if fieldErrors := validateRegisterInput(input); len(fieldErrors) > 0 {
		return nil, nil, &ValidationError{Errors: fieldErrors}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     input.Username,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Login authenticates a username/password pair and returns a token pair.
func (s *Service) Login(ctx context.Context, username, password string) (*User, *models.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a comparison so missing users take as long as bad passwords.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinvalidinvalid"), []byte(password))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Refresh rotates a refresh token and returns a new token pair.
// The presented token is revoked whether or not rotation succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	rt, err := s.refreshRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if rt.RevokedAt != nil {
		return nil, ErrInvalidRefreshToken
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	if err := s.refreshRepo.Revoke(ctx, rt.ID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes a specific refresh token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	rt, err := s.refreshRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			return nil
		}
		return err
	}
	return s.refreshRepo.Revoke(ctx, rt.ID)
}

// LogoutAll revokes every refresh token issued to the user.
func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	return s.refreshRepo.RevokeAllForUser(ctx, userID)
}

// ValidateAccessToken validates a bearer token and returns the user ID it
// was issued to. Satisfies middleware.TokenValidator.
func (s *Service) ValidateAccessToken(tokenString string) (int64, error) {
	claims, err := s.jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*models.TokenPair, error) {
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rt := &RefreshToken{
		ID:        "rft_" + uuid.New().String()[:22],
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(RefreshTokenExpiry),
		CreatedAt: now,
	}
	if err := s.refreshRepo.Create(ctx, rt); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		ExpiresAt:    models.Timestamp(expiresAt),
		RefreshToken: refreshToken,
	}, nil
}

func validateRegisterInput(input *models.RegisterRequest) []models.FieldError {
	var errs []models.FieldError

	if l := len(input.Username); l < MinUsernameLength || l > MaxUsernameLength {
		errs = append(errs, models.FieldError{Field: "username", Message: "must be between 3 and 32 characters"})
	}

	if _, err := mail.ParseAddress(input.Email); err != nil {
		errs = append(errs, models.FieldError{Field: "email", Message: "must be a valid email address"})
	}

	if l := len(input.Password); l < MinPasswordLength || l > MaxPasswordLength {
		errs = append(errs, models.FieldError{Field: "password", Message: "must be between 8 and 72 characters"})
	}

	return errs
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ToAPIUser converts a domain User to its wire representation.
func ToAPIUser(u *User) models.User {
	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: models.Timestamp(u.CreatedAt),
	}
}
