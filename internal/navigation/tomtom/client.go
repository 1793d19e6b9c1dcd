// Package tomtom provides a client for the TomTom Routing and Search APIs.
package tomtom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/navigation"
	"github.com/roadpulse/roadpulse/internal/provider/resilience"
)

const (
	// ProviderName identifies this mapping provider.
	ProviderName = "tomtom"

	// DefaultBaseURL is the TomTom API base URL.
	DefaultBaseURL = "https://api.tomtom.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultLanguage matches the locale of the user base.
	DefaultLanguage = "fr-FR"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the TomTom client.
type ClientConfig struct {
	// APIKey is the TomTom API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the TomTom API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Language is the guidance and geocoding language (optional).
	Language string

	// CountrySet restricts geocoding to the given ISO country codes
	// (optional).
	CountrySet string

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a TomTom API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	language   string
	countrySet string
	logger     zerolog.Logger
}

// NewClient creates a new TomTom client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		language:   language,
		countrySet: cfg.CountrySet,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// CalculateRoute computes drivable routes between two points with live
// traffic. Avoid zones go in the request body as bounding rectangles, which
// is the only way the routing API accepts them.
func (c *Client) CalculateRoute(ctx context.Context, req navigation.RouteRequest) (*navigation.RouteResponse, error) {
	if err := validateCoordinate(req.Origin); err != nil {
		return nil, &navigation.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      navigation.ErrInvalidCoordinates,
		}
	}
	if err := validateCoordinate(req.Destination); err != nil {
		return nil, &navigation.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      navigation.ErrInvalidCoordinates,
		}
	}

	locations := formatCoordinate(req.Origin) + ":" + formatCoordinate(req.Destination)

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("instructionsType", "text")
	params.Set("language", c.language)
	params.Set("traffic", "true")
	if req.AvoidTolls {
		params.Add("avoid", "tollRoads")
	}
	if req.AvoidHighways {
		params.Add("avoid", "motorways")
	}

	endpoint := fmt.Sprintf("%s/routing/1/calculateRoute/%s/json?%s", c.baseURL, locations, params.Encode())

	method := http.MethodGet
	var body io.Reader
	if len(req.AvoidZones) > 0 {
		payload, err := json.Marshal(routingRequest{AvoidAreas: toAvoidAreas(req.AvoidZones)})
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		method = http.MethodPost
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Int("avoid_zones", len(req.AvoidZones)).
		Msg("requesting route from tomtom")

	var ttResp routingResponse
	if err := c.do(httpReq, &ttResp); err != nil {
		return nil, err
	}

	result := toRouteResponse(&ttResp)
	if len(result.Routes) == 0 {
		return nil, &navigation.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found between the given points",
			Err:      navigation.ErrNoRouteFound,
		}
	}

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Msg("received routes from tomtom")

	return result, nil
}

// Search geocodes a free-text query into address candidates.
func (c *Client) Search(ctx context.Context, query string) (*navigation.SearchResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("language", c.language)
	if c.countrySet != "" {
		params.Set("countrySet", c.countrySet)
	}

	endpoint := fmt.Sprintf("%s/search/2/search/%s.json?%s", c.baseURL, url.PathEscape(query), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var ttResp searchResponse
	if err := c.do(httpReq, &ttResp); err != nil {
		return nil, err
	}

	results := make([]navigation.SearchResult, 0, len(ttResp.Results))
	for _, r := range ttResp.Results {
		result := navigation.SearchResult{
			Address:  r.Address.FreeformAddress,
			Position: navigation.Coordinate{Lat: r.Position.Lat, Lon: r.Position.Lon},
		}
		if r.POI != nil {
			result.Name = r.POI.Name
		}
		results = append(results, result)
	}

	return &navigation.SearchResponse{Results: results}, nil
}

// ReverseGeocode resolves coordinates into an address label.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*navigation.Address, error) {
	if err := validateCoordinate(navigation.Coordinate{Lat: lat, Lon: lon}); err != nil {
		return nil, &navigation.Error{
			Provider: ProviderName,
			Code:     "INVALID_POSITION",
			Message:  "invalid coordinates",
			Err:      navigation.ErrInvalidCoordinates,
		}
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("language", c.language)

	position := formatCoordinate(navigation.Coordinate{Lat: lat, Lon: lon})
	endpoint := fmt.Sprintf("%s/search/2/reverseGeocode/%s.json?%s", c.baseURL, position, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var ttResp reverseGeocodeResponse
	if err := c.do(httpReq, &ttResp); err != nil {
		return nil, err
	}
	if len(ttResp.Addresses) == 0 {
		return nil, &navigation.Error{
			Provider: ProviderName,
			Code:     "NO_RESULTS",
			Message:  "no address found at the given position",
			Err:      navigation.ErrNoResults,
		}
	}

	result := &navigation.Address{
		FreeformAddress: ttResp.Addresses[0].Address.FreeformAddress,
		Position:        navigation.Coordinate{Lat: lat, Lon: lon},
	}
	if parsed, ok := parsePosition(ttResp.Addresses[0].Position); ok {
		result.Position = parsed
	}
	return result, nil
}

// do executes the request and decodes a successful response into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &navigation.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach mapping provider",
			Err:      navigation.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// handleErrorResponse maps TomTom error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var ttErr errorResponse
	_ = json.Unmarshal(body, &ttErr)

	switch statusCode {
	case http.StatusTooManyRequests:
		return &navigation.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      navigation.ErrRateLimitExceeded,
		}
	case http.StatusForbidden, http.StatusUnauthorized:
		return &navigation.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "API access denied - check API key configuration",
			Err:      navigation.ErrProviderUnavailable,
		}
	case http.StatusBadRequest:
		code := ttErr.DetailedError.Code
		if code == "NO_ROUTE_FOUND" || code == "MAP_MATCHING_FAILURE" {
			return &navigation.Error{
				Provider: ProviderName,
				Code:     "NO_ROUTE",
				Message:  "no route found between the given points",
				Err:      navigation.ErrNoRouteFound,
			}
		}
		message := ttErr.DetailedError.Message
		if message == "" {
			message = "mapping provider rejected the request"
		}
		return &navigation.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  message,
			Err:      navigation.ErrInvalidCoordinates,
		}
	default:
		if statusCode >= 500 {
			return &navigation.Error{
				Provider: ProviderName,
				Code:     fmt.Sprintf("SERVER_%d", statusCode),
				Message:  "mapping provider is temporarily unavailable",
				Err:      navigation.ErrProviderUnavailable,
			}
		}
		return &navigation.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("mapping provider returned status %d", statusCode),
			Err:      navigation.ErrProviderUnavailable,
		}
	}
}

// toRouteResponse converts a TomTom response to the domain model.
func toRouteResponse(resp *routingResponse) *navigation.RouteResponse {
	routes := make([]navigation.Route, 0, len(resp.Routes))
	for i := range resp.Routes {
		ttRoute := &resp.Routes[i]

		converted := navigation.Route{
			Summary: navigation.Summary{
				LengthMeters:        ttRoute.Summary.LengthInMeters,
				TravelTimeSeconds:   ttRoute.Summary.TravelTimeInSeconds,
				TrafficDelaySeconds: ttRoute.Summary.TrafficDelayInSeconds,
			},
		}

		for _, ttLeg := range ttRoute.Legs {
			points := make([]navigation.Coordinate, 0, len(ttLeg.Points))
			for _, p := range ttLeg.Points {
				points = append(points, navigation.Coordinate{Lat: p.Latitude, Lon: p.Longitude})
			}
			converted.Legs = append(converted.Legs, navigation.Leg{Points: points})
		}

		if ttRoute.Guidance != nil {
			for _, inst := range ttRoute.Guidance.Instructions {
				converted.Instructions = append(converted.Instructions, navigation.Instruction{
					Message:           inst.Message,
					RouteOffsetMeters: inst.RouteOffsetInMeters,
					Maneuver:          inst.Maneuver,
				})
			}
		}

		routes = append(routes, converted)
	}

	return &navigation.RouteResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}
}

func toAvoidAreas(zones []navigation.AvoidZone) *avoidAreas {
	rectangles := make([]rectangle, 0, len(zones))
	for _, zone := range zones {
		southWest, northEast := zone.BoundingRect()
		rectangles = append(rectangles, rectangle{
			SouthWestCorner: corner{Latitude: southWest.Lat, Longitude: southWest.Lon},
			NorthEastCorner: corner{Latitude: northEast.Lat, Longitude: northEast.Lon},
		})
	}
	return &avoidAreas{Rectangles: rectangles}
}

func formatCoordinate(c navigation.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func parsePosition(position string) (navigation.Coordinate, bool) {
	parts := strings.SplitN(position, ",", 2)
	if len(parts) != 2 {
		return navigation.Coordinate{}, false
	}
	lat, err1 := strconv.ParseFloat(parts[0], 64)
	lon, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return navigation.Coordinate{}, false
	}
	return navigation.Coordinate{Lat: lat, Lon: lon}, true
}

func validateCoordinate(c navigation.Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}

// Ensure Client implements the Provider interface.
var _ navigation.Provider = (*Client)(nil)
