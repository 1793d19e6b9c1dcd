package models

// RouteSummary describes the headline figures of a computed route.
type RouteSummary struct {
	LengthMeters      int `json:"lengthMeters"`
	TravelTimeSeconds int `json:"travelTimeSeconds"`
}

// RouteLeg is an ordered sequence of path points.
type RouteLeg struct {
	Points []Point `json:"points"`
}

// RouteData is the validated shape of third-party route geometry stored
// alongside a saved route. It replaces the opaque blobs the persistence
// layer used to carry.
type RouteData struct {
	Summary RouteSummary `json:"summary"`
	Legs    []RouteLeg   `json:"legs"`
}

// SavedRoute is the wire representation of a persisted route.
type SavedRoute struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	RouteData     RouteData `json:"routeData"`
	AvoidTolls    bool      `json:"avoidTolls"`
	AvoidHighways bool      `json:"avoidHighways"`
	ShareCode     *string   `json:"shareCode"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// RouteSaveRequest is the body of POST /api/routes.
type RouteSaveRequest struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	RouteData     RouteData `json:"routeData"`
	AvoidTolls    bool      `json:"avoidTolls"`
	AvoidHighways bool      `json:"avoidHighways"`
}

// NavigationRouteSummary extends the saved-route summary with live traffic
// figures from the mapping provider.
type NavigationRouteSummary struct {
	LengthMeters        int `json:"lengthMeters"`
	TravelTimeSeconds   int `json:"travelTimeSeconds"`
	TrafficDelaySeconds int `json:"trafficDelaySeconds"`
}

// NavigationInstruction is a single turn-by-turn guidance step.
type NavigationInstruction struct {
	Message           string `json:"message"`
	RouteOffsetMeters int    `json:"routeOffsetMeters"`
	Maneuver          string `json:"maneuver,omitempty"`
}

// NavigationRoute is one computed route alternative.
type NavigationRoute struct {
	Summary      NavigationRouteSummary  `json:"summary"`
	Legs         []RouteLeg              `json:"legs"`
	Instructions []NavigationInstruction `json:"instructions,omitempty"`
}

// NavigationRouteResponse is the body of GET /api/navigation/route.
type NavigationRouteResponse struct {
	Routes   []NavigationRoute `json:"routes"`
	Provider string            `json:"provider"`
}

// GeocodeResult is one address candidate from GET /api/navigation/search.
type GeocodeResult struct {
	Name     string `json:"name,omitempty"`
	Address  string `json:"address"`
	Position Point  `json:"position"`
}

// GeocodeResponse is the body of GET /api/navigation/search.
type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

// ReverseGeocodeResponse is the body of GET /api/navigation/reverse-geocode.
type ReverseGeocodeResponse struct {
	Address  string `json:"address"`
	Position Point  `json:"position"`
}
