// Package alert decides which pushed incidents deserve the driver's
// attention and runs each alert through its display lifecycle.
package alert

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/pkg/geo"
	"github.com/roadpulse/roadpulse/pkg/polyline"
)

// DefaultAlertRadiusMeters is the relevance radius applied when the
// configuration does not specify one. Boundary inclusive.
const DefaultAlertRadiusMeters = 5000

// EvaluatorConfig holds configuration for the proximity evaluator.
type EvaluatorConfig struct {
	// AlertRadiusMeters is the relevance radius (default 5000).
	AlertRadiusMeters float64

	// Logger for evaluator decisions.
	Logger zerolog.Logger
}

// Evaluator decides whether an incident is relevant to the user's current
// position, and optionally to the active route corridor.
type Evaluator struct {
	radiusMeters float64
	logger       zerolog.Logger
}

// NewEvaluator creates a new proximity evaluator.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	radius := cfg.AlertRadiusMeters
	if radius <= 0 {
		radius = DefaultAlertRadiusMeters
	}
	return &Evaluator{radiusMeters: radius, logger: cfg.Logger}
}

// Candidate is a relevance decision for one incident.
type Candidate struct {
	Incident       models.Incident
	DistanceMeters float64
}

// Evaluate reports whether the incident should alert the user. fix is the
// last known position, nil when no fix is available; routePath is the
// active route geometry, empty when none. No fix means no alert: an
// unverifiable candidate is dropped rather than guessed at.
func (e *Evaluator) Evaluate(incident models.Incident, userID int64, fix *geo.Point, routePath []geo.Point) (Candidate, bool) {
	if fix == nil {
		e.logger.Debug().Int64("incident_id", incident.ID).Msg("no position fix, dropping candidate")
		return Candidate{}, false
	}

	if incident.ReportedBy == userID {
		return Candidate{}, false
	}

	lat, err := strconv.ParseFloat(incident.Latitude, 64)
	if err != nil {
		e.logger.Warn().Int64("incident_id", incident.ID).Str("latitude", incident.Latitude).Msg("unparseable incident latitude")
		return Candidate{}, false
	}
	lon, err := strconv.ParseFloat(incident.Longitude, 64)
	if err != nil {
		e.logger.Warn().Int64("incident_id", incident.ID).Str("longitude", incident.Longitude).Msg("unparseable incident longitude")
		return Candidate{}, false
	}

	location := geo.Point{Lat: lat, Lon: lon}
	distance := geo.Distance(*fix, location)
	if distance > e.radiusMeters {
		return Candidate{}, false
	}

	// With an active route the incident must also sit near the corridor,
	// not just near the driver.
	if len(routePath) > 0 && geo.DistanceToPath(routePath, location) > e.radiusMeters {
		return Candidate{}, false
	}

	return Candidate{Incident: incident, DistanceMeters: distance}, true
}

// corridorSampleMeters thins provider geometry before corridor checks.
// Provider polylines can carry a point every few meters; corridor
// relevance does not need that resolution.
const corridorSampleMeters = 200

// PathFromPolyline decodes an encoded route polyline into corridor points
// for Evaluate, thinned to roughly one point per 200 meters.
func PathFromPolyline(encoded string) []geo.Point {
	coords := polyline.Sample(polyline.Decode(encoded), corridorSampleMeters)
	points := make([]geo.Point, 0, len(coords))
	for _, c := range coords {
		points = append(points, geo.Point{Lat: c.Lat, Lon: c.Lon})
	}
	return points
}
