package tomtom

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/navigation"
)

type mockHTTPClient struct {
	client *http.Client
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.client.Do(req)
}

const routingResponseBody = `{
	"routes": [
		{
			"summary": {
				"lengthInMeters": 8420,
				"travelTimeInSeconds": 1260,
				"trafficDelaySeconds": 0,
				"trafficDelayInSeconds": 180
			},
			"legs": [
				{
					"points": [
						{"latitude": 48.8566, "longitude": 2.3522},
						{"latitude": 48.8600, "longitude": 2.3530},
						{"latitude": 48.8660, "longitude": 2.3540}
					]
				}
			],
			"guidance": {
				"instructions": [
					{"message": "Take Rue de Rivoli", "routeOffsetInMeters": 0, "maneuver": "DEPART"},
					{"message": "You have arrived", "routeOffsetInMeters": 8420, "maneuver": "ARRIVE"}
				]
			}
		}
	]
}`

func newTestClient(server *httptest.Server) *Client {
	return NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})
}

func TestClient_CalculateRoute_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		expectedPath := "/routing/1/calculateRoute/48.8566,2.3522:48.8666,2.36/json"
		if r.URL.Path != expectedPath {
			t.Errorf("expected path %s, got %s", expectedPath, r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("key") != "mock123" {
			t.Errorf("expected key mock123, got %q", query.Get("key"))
		}
		if query.Get("traffic") != "true" {
			t.Error("expected traffic=true")
		}
		if query.Get("instructionsType") != "text" {
			t.Error("expected instructionsType=text")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(routingResponseBody))
	}))
	defer server.Close()

	client := newTestClient(server)

	resp, err := client.CalculateRoute(context.Background(), navigation.RouteRequest{
		Origin:      navigation.Coordinate{Lat: 48.8566, Lon: 2.3522},
		Destination: navigation.Coordinate{Lat: 48.8666, Lon: 2.36},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Provider != ProviderName {
		t.Errorf("expected provider %s, got %s", ProviderName, resp.Provider)
	}
	if len(resp.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(resp.Routes))
	}

	route := resp.Routes[0]
	if route.Summary.LengthMeters != 8420 {
		t.Errorf("expected length 8420, got %d", route.Summary.LengthMeters)
	}
	if route.Summary.TravelTimeSeconds != 1260 {
		t.Errorf("expected travel time 1260, got %d", route.Summary.TravelTimeSeconds)
	}
	if route.Summary.TrafficDelaySeconds != 180 {
		t.Errorf("expected traffic delay 180, got %d", route.Summary.TrafficDelaySeconds)
	}
	if len(route.Legs) != 1 || len(route.Legs[0].Points) != 3 {
		t.Fatalf("expected 1 leg with 3 points, got %+v", route.Legs)
	}
	if route.Legs[0].Points[0].Lat != 48.8566 {
		t.Errorf("expected first point lat 48.8566, got %f", route.Legs[0].Points[0].Lat)
	}
	if len(route.Instructions) != 2 {
		t.Errorf("expected 2 instructions, got %d", len(route.Instructions))
	}
}

func TestClient_CalculateRoute_AvoidFlags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		avoid := r.URL.Query()["avoid"]
		if len(avoid) != 2 {
			t.Fatalf("expected 2 avoid params, got %v", avoid)
		}
		if avoid[0] != "tollRoads" || avoid[1] != "motorways" {
			t.Errorf("unexpected avoid params: %v", avoid)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(routingResponseBody))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CalculateRoute(context.Background(), navigation.RouteRequest{
		Origin:        navigation.Coordinate{Lat: 48.8566, Lon: 2.3522},
		Destination:   navigation.Coordinate{Lat: 48.8666, Lon: 2.36},
		AvoidTolls:    true,
		AvoidHighways: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_CalculateRoute_AvoidZones(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST when avoid zones are set, got %s", r.Method)
		}

		body, _ := io.ReadAll(r.Body)
		var req routingRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if req.AvoidAreas == nil || len(req.AvoidAreas.Rectangles) != 1 {
			t.Fatalf("expected 1 avoid rectangle, got %+v", req.AvoidAreas)
		}

		rect := req.AvoidAreas.Rectangles[0]
		if rect.SouthWestCorner.Latitude >= 48.8566 || rect.NorthEastCorner.Latitude <= 48.8566 {
			t.Errorf("rectangle does not contain the zone center: %+v", rect)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(routingResponseBody))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CalculateRoute(context.Background(), navigation.RouteRequest{
		Origin:      navigation.Coordinate{Lat: 48.84, Lon: 2.34},
		Destination: navigation.Coordinate{Lat: 48.88, Lon: 2.37},
		AvoidZones: []navigation.AvoidZone{
			{Center: navigation.Coordinate{Lat: 48.8566, Lon: 2.3522}, RadiusMeters: 500},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_CalculateRoute_InvalidCoordinates(t *testing.T) {
	client := NewClient(ClientConfig{APIKey: "mock123", Logger: zerolog.Nop()})

	_, err := client.CalculateRoute(context.Background(), navigation.RouteRequest{
		Origin:      navigation.Coordinate{Lat: 91, Lon: 2.3522},
		Destination: navigation.Coordinate{Lat: 48.8666, Lon: 2.36},
	})
	if !errors.Is(err, navigation.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestClient_CalculateRoute_NoRouteFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detailedError":{"code":"NO_ROUTE_FOUND","message":"No route found."}}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CalculateRoute(context.Background(), navigation.RouteRequest{
		Origin:      navigation.Coordinate{Lat: 48.8566, Lon: 2.3522},
		Destination: navigation.Coordinate{Lat: -48.8666, Lon: -2.36},
	})
	if !errors.Is(err, navigation.ErrNoRouteFound) {
		t.Fatalf("expected ErrNoRouteFound, got %v", err)
	}
}

func TestClient_CalculateRoute_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CalculateRoute(context.Background(), navigation.RouteRequest{
		Origin:      navigation.Coordinate{Lat: 48.8566, Lon: 2.3522},
		Destination: navigation.Coordinate{Lat: 48.8666, Lon: 2.36},
	})
	if !errors.Is(err, navigation.ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
	}

	var navErr *navigation.Error
	if !errors.As(err, &navErr) {
		t.Fatalf("expected *navigation.Error, got %T", err)
	}
	if !navErr.IsRetryable() {
		t.Error("expected rate limit error to be retryable")
	}
}

func TestClient_CalculateRoute_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CalculateRoute(context.Background(), navigation.RouteRequest{
		Origin:      navigation.Coordinate{Lat: 48.8566, Lon: 2.3522},
		Destination: navigation.Coordinate{Lat: 48.8666, Lon: 2.36},
	})
	if !errors.Is(err, navigation.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestClient_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedPath := "/search/2/search/tour eiffel.json"
		if r.URL.Path != expectedPath {
			t.Errorf("expected path %s, got %s", expectedPath, r.URL.Path)
		}
		if r.URL.Query().Get("countrySet") != "FR" {
			t.Errorf("expected countrySet FR, got %q", r.URL.Query().Get("countrySet"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{
					"poi": {"name": "Tour Eiffel"},
					"address": {"freeformAddress": "5 Avenue Anatole France, 75007 Paris"},
					"position": {"lat": 48.8584, "lon": 2.2945}
				},
				{
					"address": {"freeformAddress": "Rue de la Tour Eiffel, Nice"},
					"position": {"lat": 43.7102, "lon": 7.262}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		CountrySet: "FR",
		Logger:     zerolog.Nop(),
	})

	resp, err := client.Search(context.Background(), "tour eiffel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Name != "Tour Eiffel" {
		t.Errorf("expected POI name, got %q", resp.Results[0].Name)
	}
	if resp.Results[0].Position.Lat != 48.8584 {
		t.Errorf("expected lat 48.8584, got %f", resp.Results[0].Position.Lat)
	}
	if resp.Results[1].Name != "" {
		t.Errorf("expected empty name for plain address, got %q", resp.Results[1].Name)
	}
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedPath := "/search/2/reverseGeocode/48.8584,2.2945.json"
		if r.URL.Path != expectedPath {
			t.Errorf("expected path %s, got %s", expectedPath, r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"addresses": [
				{
					"address": {"freeformAddress": "5 Avenue Anatole France, 75007 Paris"},
					"position": "48.858400,2.294500"
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	addr, err := client.ReverseGeocode(context.Background(), 48.8584, 2.2945)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if addr.FreeformAddress != "5 Avenue Anatole France, 75007 Paris" {
		t.Errorf("unexpected address: %q", addr.FreeformAddress)
	}
	if addr.Position.Lat != 48.8584 {
		t.Errorf("expected lat 48.8584, got %f", addr.Position.Lat)
	}
}

func TestClient_ReverseGeocode_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"addresses": []}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.ReverseGeocode(context.Background(), 0, 0)
	if !errors.Is(err, navigation.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}
