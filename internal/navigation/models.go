// Package navigation provides live route computation and geocoding through
// a third-party mapping provider.
package navigation

import (
	"context"
	"errors"
	"math"
	"time"
)

// Sentinel errors for navigation operations.
var (
	// ErrProviderUnavailable indicates the mapping provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("mapping provider unavailable")
	// ErrNoRouteFound indicates no drivable route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrNoResults indicates a geocoding lookup matched nothing.
	ErrNoResults = errors.New("no results found")
)

// Provider defines the interface for mapping providers.
type Provider interface {
	// CalculateRoute computes drivable routes between two points with
	// live traffic.
	CalculateRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error)
	// Search geocodes a free-text query into address candidates.
	Search(ctx context.Context, query string) (*SearchResponse, error)
	// ReverseGeocode resolves coordinates into an address label.
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Address, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// AvoidZone is a circular area routes must steer around. Providers that
// only accept rectangles use the bounding rectangle.
type AvoidZone struct {
	Center       Coordinate
	RadiusMeters float64
}

// BoundingRect returns the south-west and north-east corners of the
// zone's bounding rectangle.
func (z AvoidZone) BoundingRect() (southWest, northEast Coordinate) {
	// Meters per degree of latitude, and of longitude at this latitude.
	const metersPerDegree = 111320.0
	dLat := z.RadiusMeters / metersPerDegree
	dLon := z.RadiusMeters / (metersPerDegree * math.Cos(z.Center.Lat*math.Pi/180))

	southWest = Coordinate{Lat: z.Center.Lat - dLat, Lon: z.Center.Lon - dLon}
	northEast = Coordinate{Lat: z.Center.Lat + dLat, Lon: z.Center.Lon + dLon}
	return southWest, northEast
}

// RouteRequest is the request for computing routes.
type RouteRequest struct {
	Origin        Coordinate
	Destination   Coordinate
	AvoidTolls    bool
	AvoidHighways bool
	AvoidZones    []AvoidZone
}

// RouteResponse is the response containing route alternatives.
type RouteResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route represents a single route option.
type Route struct {
	Summary      Summary
	Legs         []Leg
	Instructions []Instruction
}

// Summary describes the headline figures of a route.
type Summary struct {
	LengthMeters        int
	TravelTimeSeconds   int
	TrafficDelaySeconds int
}

// Leg is an ordered sequence of path points.
type Leg struct {
	Points []Coordinate
}

// Instruction represents a turn-by-turn instruction.
type Instruction struct {
	Message           string
	RouteOffsetMeters int
	Maneuver          string
}

// SearchResponse contains geocoding candidates, best match first.
type SearchResponse struct {
	Results []SearchResult
}

// SearchResult is one geocoding candidate.
type SearchResult struct {
	Name     string // POI name, empty for plain addresses
	Address  string
	Position Coordinate
}

// Address is a reverse-geocoded position.
type Address struct {
	FreeformAddress string
	Position        Coordinate
}

// Error provides detailed error information from the mapping provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
