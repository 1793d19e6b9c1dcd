package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/api/response"
	"github.com/roadpulse/roadpulse/internal/incident"
)

// IncidentHandler handles incident reporting and verification endpoints.
type IncidentHandler struct {
	incidentService *incident.Service
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(incidentService *incident.Service) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
	}
}

// Create handles POST /api/incidents - report a new incident.
func (h *IncidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.IncidentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.incidentService.Report(r.Context(), GetUserID(r.Context()), &req)
	if err != nil {
		var validationErr *incident.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to report incident")
		return
	}

	response.Created(w, r, "/api/incidents/"+strconv.FormatInt(created.ID, 10), created)
}

// List handles GET /api/incidents - list active incidents.
func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.incidentService.ListActive(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list incidents")
		return
	}

	response.JSON(w, r, http.StatusOK, incidents)
}

// Nearby handles GET /api/incidents/nearby - active incidents around a point.
// The radius query parameter is in kilometers and defaults to 5.
func (h *IncidentHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", []models.FieldError{
			{Field: "lat", Message: "must be a decimal number"},
			{Field: "lon", Message: "must be a decimal number"},
		})
		return
	}

	var radiusMeters float64
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radiusKm, err := strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 {
			response.BadRequest(w, r, "radius must be a positive number of kilometers", []models.FieldError{
				{Field: "radius", Message: "must be a positive number"},
			})
			return
		}
		radiusMeters = radiusKm * 1000
	}

	incidents, err := h.incidentService.Nearby(r.Context(), lat, lon, radiusMeters)
	if err != nil {
		var validationErr *incident.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to list nearby incidents")
		return
	}

	response.JSON(w, r, http.StatusOK, incidents)
}

// Verify handles POST /api/incidents/{id}/verify - confirm or deny an incident.
func (h *IncidentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, r, "invalid incident ID", nil)
		return
	}

	var req models.VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	confirmed, ok := req.Confirmed()
	if !ok {
		response.BadRequest(w, r, "isConfirmed is required", []models.FieldError{
			{Field: "isConfirmed", Message: "required"},
		})
		return
	}

	verification, _, err := h.incidentService.Verify(r.Context(), id, GetUserID(r.Context()), confirmed)
	if err != nil {
		if errors.Is(err, incident.ErrIncidentNotFound) {
			response.NotFound(w, r, "incident not found")
			return
		}
		if errors.Is(err, incident.ErrDuplicateVerification) {
			response.BadRequest(w, r, "you have already verified this incident", nil)
			return
		}
		response.InternalError(w, r, "failed to record verification")
		return
	}

	response.JSON(w, r, http.StatusCreated, verification)
}

// SetStatus handles PUT /api/incidents/{id}/status - activate or resolve.
func (h *IncidentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, r, "invalid incident ID", nil)
		return
	}

	var req models.IncidentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.Active == nil {
		response.BadRequest(w, r, "active is required", []models.FieldError{
			{Field: "active", Message: "required"},
		})
		return
	}

	updated, err := h.incidentService.SetStatus(r.Context(), id, *req.Active)
	if err != nil {
		if errors.Is(err, incident.ErrIncidentNotFound) {
			response.NotFound(w, r, "incident not found")
			return
		}
		response.InternalError(w, r, "failed to update incident status")
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// AdminList handles GET /api/admin/incidents - list all incidents, resolved
// ones included.
func (h *IncidentHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.incidentService.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list incidents")
		return
	}

	response.JSON(w, r, http.StatusOK, incidents)
}

// Update handles PUT /api/incidents/{id} - admin patch of type, comment or
// active flag.
func (h *IncidentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, r, "invalid incident ID", nil)
		return
	}

	var req models.IncidentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.incidentService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, incident.ErrIncidentNotFound) {
			response.NotFound(w, r, "incident not found")
			return
		}
		var validationErr *incident.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to update incident")
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /api/incidents/{id} - admin delete.
func (h *IncidentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, r, "invalid incident ID", nil)
		return
	}

	if err := h.incidentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, incident.ErrIncidentNotFound) {
			response.NotFound(w, r, "incident not found")
			return
		}
		response.InternalError(w, r, "failed to delete incident")
		return
	}

	response.NoContent(w, r)
}
