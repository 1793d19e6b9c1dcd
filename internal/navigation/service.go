package navigation

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// ServiceConfig holds configuration for the navigation service.
type ServiceConfig struct {
	// Provider is the mapping data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// GeocodeCacheTTL is how long to cache geocoding lookups
	// (default: 1 hour). Route responses carry live traffic and are
	// never cached.
	GeocodeCacheTTL time.Duration

	// GeocodeCacheSize bounds the geocode cache (default: 1000 entries).
	GeocodeCacheSize int
}

// Service fronts the mapping provider, caching geocoding lookups and
// converting provider responses to wire models.
type Service struct {
	provider         Provider
	logger           zerolog.Logger
	geocodeCacheTTL  time.Duration
	geocodeCacheSize int

	mu    sync.RWMutex
	cache map[string]*cachedGeocode
}

type cachedGeocode struct {
	response  interface{}
	expiresAt time.Time
}

// NewService creates a new navigation service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.GeocodeCacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	size := cfg.GeocodeCacheSize
	if size == 0 {
		size = 1000
	}

	return &Service{
		provider:         cfg.Provider,
		logger:           cfg.Logger,
		geocodeCacheTTL:  ttl,
		geocodeCacheSize: size,
		cache:            make(map[string]*cachedGeocode),
	}
}

// CalculateRoute computes routes between two points, always live.
func (s *Service) CalculateRoute(ctx context.Context, req RouteRequest) (*models.NavigationRouteResponse, error) {
	resp, err := s.provider.CalculateRoute(ctx, req)
	if err != nil {
		return nil, err
	}
	return toAPIRouteResponse(resp), nil
}

// Search geocodes a free-text query.
func (s *Service) Search(ctx context.Context, query string) (*models.GeocodeResponse, error) {
	key := "search:" + strings.ToLower(strings.TrimSpace(query))
	if cached, ok := s.cached(key); ok {
		return cached.(*models.GeocodeResponse), nil
	}

	resp, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]models.GeocodeResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, models.GeocodeResult{
			Name:     r.Name,
			Address:  r.Address,
			Position: models.Point{Lat: r.Position.Lat, Lon: r.Position.Lon},
		})
	}

	result := &models.GeocodeResponse{Results: results}
	s.store(key, result)
	return result, nil
}

// ReverseGeocode resolves coordinates into an address label. Positions are
// bucketed to ~11 m for cache purposes.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.ReverseGeocodeResponse, error) {
	key := "reverse:" + strconv.FormatFloat(lat, 'f', 4, 64) + "," + strconv.FormatFloat(lon, 'f', 4, 64)
	if cached, ok := s.cached(key); ok {
		return cached.(*models.ReverseGeocodeResponse), nil
	}

	addr, err := s.provider.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	result := &models.ReverseGeocodeResponse{
		Address:  addr.FreeformAddress,
		Position: models.Point{Lat: addr.Position.Lat, Lon: addr.Position.Lon},
	}
	s.store(key, result)
	return result, nil
}

func (s *Service) cached(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.response, true
}

func (s *Service) store(key string, response interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Crude bound: reset rather than evict. Geocode lookups are cheap to
	// refill and the cache exists only to absorb repeated queries.
	if len(s.cache) >= s.geocodeCacheSize {
		s.cache = make(map[string]*cachedGeocode)
	}
	s.cache[key] = &cachedGeocode{
		response:  response,
		expiresAt: time.Now().Add(s.geocodeCacheTTL),
	}
}

func toAPIRouteResponse(resp *RouteResponse) *models.NavigationRouteResponse {
	routes := make([]models.NavigationRoute, 0, len(resp.Routes))
	for _, route := range resp.Routes {
		converted := models.NavigationRoute{
			Summary: models.NavigationRouteSummary{
				LengthMeters:        route.Summary.LengthMeters,
				TravelTimeSeconds:   route.Summary.TravelTimeSeconds,
				TrafficDelaySeconds: route.Summary.TrafficDelaySeconds,
			},
		}
		for _, leg := range route.Legs {
			points := make([]models.Point, 0, len(leg.Points))
			for _, p := range leg.Points {
				points = append(points, models.Point{Lat: p.Lat, Lon: p.Lon})
			}
			converted.Legs = append(converted.Legs, models.RouteLeg{Points: points})
		}
		for _, inst := range route.Instructions {
			converted.Instructions = append(converted.Instructions, models.NavigationInstruction{
				Message:           inst.Message,
				RouteOffsetMeters: inst.RouteOffsetMeters,
				Maneuver:          inst.Maneuver,
			})
		}
		routes = append(routes, converted)
	}

	return &models.NavigationRouteResponse{
		Routes:   routes,
		Provider: resp.Provider,
	}
}
