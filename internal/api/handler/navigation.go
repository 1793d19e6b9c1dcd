package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/api/response"
	"github.com/roadpulse/roadpulse/internal/navigation"
)

// NavigationHandler proxies route computation and geocoding to the mapping
// provider.
type NavigationHandler struct {
	navService *navigation.Service
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(navService *navigation.Service) *NavigationHandler {
	return &NavigationHandler{
		navService: navService,
	}
}

// Route handles GET /api/navigation/route - compute drivable routes with
// live traffic. Coordinates come as originLat/originLon/destLat/destLon;
// an optional circular avoid zone as avoidLat/avoidLon/avoidRadius.
func (h *NavigationHandler) Route(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	origin, originErrs := parseCoordinate(q.Get("originLat"), q.Get("originLon"), "origin")
	dest, destErrs := parseCoordinate(q.Get("destLat"), q.Get("destLon"), "dest")
	if fieldErrors := append(originErrs, destErrs...); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "origin and destination coordinates are required", fieldErrors)
		return
	}

	req := navigation.RouteRequest{
		Origin:        origin,
		Destination:   dest,
		AvoidTolls:    q.Get("avoidTolls") == "true",
		AvoidHighways: q.Get("avoidHighways") == "true",
	}

	if q.Get("avoidLat") != "" || q.Get("avoidLon") != "" {
		center, zoneErrs := parseCoordinate(q.Get("avoidLat"), q.Get("avoidLon"), "avoid")
		radius, err := strconv.ParseFloat(q.Get("avoidRadius"), 64)
		if len(zoneErrs) > 0 || err != nil || radius <= 0 {
			response.BadRequest(w, r, "avoid zone requires avoidLat, avoidLon and a positive avoidRadius in meters", nil)
			return
		}
		req.AvoidZones = []navigation.AvoidZone{{Center: center, RadiusMeters: radius}}
	}

	routes, err := h.navService.CalculateRoute(r.Context(), req)
	if err != nil {
		h.writeProviderError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, routes)
}

// Search handles GET /api/navigation/search - geocode a free-text query.
func (h *NavigationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, r, "q query parameter is required", []models.FieldError{
			{Field: "q", Message: "required"},
		})
		return
	}

	results, err := h.navService.Search(r.Context(), query)
	if err != nil {
		h.writeProviderError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, results)
}

// ReverseGeocode handles GET /api/navigation/reverse-geocode - resolve
// lat/lon into an address label.
func (h *NavigationHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	position, fieldErrors := parseCoordinate(q.Get("lat"), q.Get("lon"), "")
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "lat and lon query parameters are required", fieldErrors)
		return
	}

	result, err := h.navService.ReverseGeocode(r.Context(), position.Lat, position.Lon)
	if err != nil {
		h.writeProviderError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, result)
}

// writeProviderError maps navigation domain errors onto HTTP statuses.
// Upstream provider failures surface as plain 500s.
func (h *NavigationHandler) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, navigation.ErrInvalidCoordinates):
		response.BadRequest(w, r, "invalid coordinates", nil)
	case errors.Is(err, navigation.ErrNoRouteFound):
		response.NotFound(w, r, "no route found between the given points")
	case errors.Is(err, navigation.ErrNoResults):
		response.NotFound(w, r, "no results found")
	case errors.Is(err, navigation.ErrRateLimitExceeded):
		response.TooManyRequests(w, r, "mapping provider rate limit exceeded")
	default:
		response.InternalError(w, r, "mapping provider request failed")
	}
}

// parseCoordinate parses a lat/lon query parameter pair. The prefix names
// the pair in field errors ("originLat") or is empty for bare lat/lon.
func parseCoordinate(latRaw, lonRaw, prefix string) (navigation.Coordinate, []models.FieldError) {
	latField, lonField := "lat", "lon"
	if prefix != "" {
		latField, lonField = prefix+"Lat", prefix+"Lon"
	}

	var fieldErrors []models.FieldError
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: latField, Message: "must be a decimal number"})
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: lonField, Message: "must be a decimal number"})
	}
	if len(fieldErrors) > 0 {
		return navigation.Coordinate{}, fieldErrors
	}
	return navigation.Coordinate{Lat: lat, Lon: lon}, nil
}
