package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/api/response"
	"github.com/roadpulse/roadpulse/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/auth/register - create a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	user, tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		var validationErr *auth.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		if errors.Is(err, auth.ErrUsernameTaken) {
			response.Conflict(w, r, "username is already taken")
			return
		}
		if errors.Is(err, auth.ErrEmailTaken) {
			response.Conflict(w, r, "email is already registered")
			return
		}
		response.InternalError(w, r, "registration failed")
		return
	}

	response.JSON(w, r, http.StatusCreated, models.AuthResponse{
		User:   auth.ToAPIUser(user),
		Tokens: *tokens,
	})
}

// Login handles POST /api/auth/login - authenticate with username and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, r, "username and password are required", nil)
		return
	}

	user, tokens, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Unauthorized(w, r, "invalid username or password")
			return
		}
		response.InternalError(w, r, "login failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.AuthResponse{
		User:   auth.ToAPIUser(user),
		Tokens: *tokens,
	})
}

// Refresh handles POST /api/auth/refresh - rotate a refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.RefreshToken == "" {
		response.BadRequest(w, r, "refreshToken is required", []models.FieldError{
			{Field: "refreshToken", Message: "required"},
		})
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) || errors.Is(err, auth.ErrRefreshTokenExpired) {
			response.Unauthorized(w, r, "invalid or expired refresh token")
			return
		}
		response.InternalError(w, r, "token refresh failed")
		return
	}

	response.JSON(w, r, http.StatusOK, tokens)
}

// Logout handles POST /api/auth/logout - revoke a refresh token.
// Revoking an unknown token succeeds silently.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		response.InternalError(w, r, "logout failed")
		return
	}

	response.NoContent(w, r)
}

// Me handles GET /api/me - return the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUser(r.Context(), GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "failed to load user")
		return
	}

	response.JSON(w, r, http.StatusOK, auth.ToAPIUser(user))
}
