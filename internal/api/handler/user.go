package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/api/response"
	"github.com/roadpulse/roadpulse/internal/user"
)

// UserHandler handles administrative account endpoints.
type UserHandler struct {
	userService *user.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List handles GET /api/users - list all accounts.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list users")
		return
	}

	response.JSON(w, r, http.StatusOK, users)
}

// Update handles PUT /api/users/{id} - partial account update.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, r, "invalid user ID", nil)
		return
	}

	var req models.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.userService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		if errors.Is(err, user.ErrEmailTaken) {
			response.Conflict(w, r, "email already in use")
			return
		}
		var validationErr *user.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to update user")
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /api/users/{id} - remove an account and everything
// that hangs off it.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, r, "invalid user ID", nil)
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "failed to delete user")
		return
	}

	response.NoContent(w, r)
}
