package handler

import (
	"net/http"

	"github.com/roadpulse/roadpulse/internal/api/response"
	"github.com/roadpulse/roadpulse/internal/incident"
	"github.com/roadpulse/roadpulse/internal/route"
)

// StatisticsHandler handles the reporting activity endpoints.
type StatisticsHandler struct {
	incidentService *incident.Service
	routeService    *route.Service
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(incidentService *incident.Service, routeService *route.Service) *StatisticsHandler {
	return &StatisticsHandler{
		incidentService: incidentService,
		routeService:    routeService,
	}
}

// Overview handles GET /api/statistics - site-wide reporting activity.
func (h *StatisticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.incidentService.Stats(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to compute statistics")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	response.JSON(w, r, http.StatusOK, stats)
}

// User handles GET /api/statistics/user - the authenticated user's
// contribution counts.
func (h *StatisticsHandler) User(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	stats, err := h.incidentService.UserStats(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to compute user statistics")
		return
	}

	routeCount, err := h.routeService.CountByUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to compute user statistics")
		return
	}
	stats.TotalRoutes = routeCount

	response.JSON(w, r, http.StatusOK, stats)
}
