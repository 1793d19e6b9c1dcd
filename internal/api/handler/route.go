package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/api/response"
	"github.com/roadpulse/roadpulse/internal/route"
)

// RouteHandler handles saved-route endpoints.
type RouteHandler struct {
	routeService *route.Service
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routeService *route.Service) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
	}
}

// Save handles POST /api/routes - persist a route with a share code.
func (h *RouteHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.RouteSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	saved, err := h.routeService.Save(r.Context(), GetUserID(r.Context()), &req)
	if err != nil {
		var validationErr *route.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to save route")
		return
	}

	response.Created(w, r, "/api/routes/"+strconv.FormatInt(saved.ID, 10), saved)
}

// List handles GET /api/routes - the authenticated user's saved routes.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routeService.ListByUser(r.Context(), GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w, r, "failed to list routes")
		return
	}

	response.JSON(w, r, http.StatusOK, routes)
}

// Recent handles GET /api/routes/recent - most recently saved routes.
func (h *RouteHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "limit must be a positive integer", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer"},
			})
			return
		}
		limit = parsed
	}

	routes, err := h.routeService.Recent(r.Context(), GetUserID(r.Context()), limit)
	if err != nil {
		response.InternalError(w, r, "failed to list recent routes")
		return
	}

	response.JSON(w, r, http.StatusOK, routes)
}

// Share handles GET /api/routes/share/{code} - fetch a shared route. No
// authentication: share codes are the capability.
func (h *RouteHandler) Share(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, r, "share code is required", nil)
		return
	}

	shared, err := h.routeService.GetByShareCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "no route with that share code")
			return
		}
		response.InternalError(w, r, "failed to load shared route")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	response.JSON(w, r, http.StatusOK, shared)
}

// AdminList handles GET /api/admin/routes - every user's saved routes.
func (h *RouteHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routeService.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list routes")
		return
	}

	response.JSON(w, r, http.StatusOK, routes)
}

// Delete handles DELETE /api/routes/{id} - remove one of the user's routes.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, r, "invalid route ID", nil)
		return
	}

	if err := h.routeService.Delete(r.Context(), GetUserID(r.Context()), id); err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to delete route")
		return
	}

	response.NoContent(w, r)
}
