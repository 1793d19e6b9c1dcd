package tomtom

// Wire types for the TomTom Routing and Search APIs. Only the fields the
// conversion to domain models needs are declared.

type routingResponse struct {
	Routes []route `json:"routes"`
}

type route struct {
	Summary  summary   `json:"summary"`
	Legs     []leg     `json:"legs"`
	Guidance *guidance `json:"guidance"`
}

type summary struct {
	LengthInMeters        int `json:"lengthInMeters"`
	TravelTimeInSeconds   int `json:"travelTimeInSeconds"`
	TrafficDelayInSeconds int `json:"trafficDelayInSeconds"`
}

type leg struct {
	Points []point `json:"points"`
}

type point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type guidance struct {
	Instructions []instruction `json:"instructions"`
}

type instruction struct {
	Message             string `json:"message"`
	RouteOffsetInMeters int    `json:"routeOffsetInMeters"`
	Maneuver            string `json:"maneuver"`
}

// routingRequest is the optional POST body for calculateRoute. Avoid areas
// can only be passed in the body.
type routingRequest struct {
	AvoidAreas *avoidAreas `json:"avoidAreas,omitempty"`
}

type avoidAreas struct {
	Rectangles []rectangle `json:"rectangles"`
}

type rectangle struct {
	SouthWestCorner corner `json:"southWestCorner"`
	NorthEastCorner corner `json:"northEastCorner"`
}

type corner struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	POI      *poi    `json:"poi"`
	Address  address `json:"address"`
	Position latLon  `json:"position"`
}

type poi struct {
	Name string `json:"name"`
}

type address struct {
	FreeformAddress string `json:"freeformAddress"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type reverseGeocodeResponse struct {
	Addresses []reverseGeocodeAddress `json:"addresses"`
}

type reverseGeocodeAddress struct {
	Address address `json:"address"`
	// Position is a "lat,lon" string in the reverse geocode API.
	Position string `json:"position"`
}

type errorResponse struct {
	DetailedError struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"detailedError"`
}
