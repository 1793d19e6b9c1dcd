// Package api provides the HTTP API for RoadPulse.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/api/handler"
	"github.com/roadpulse/roadpulse/internal/api/middleware"
	"github.com/roadpulse/roadpulse/internal/auth"
	"github.com/roadpulse/roadpulse/internal/incident"
	"github.com/roadpulse/roadpulse/internal/navigation"
	"github.com/roadpulse/roadpulse/internal/push"
	"github.com/roadpulse/roadpulse/internal/route"
	"github.com/roadpulse/roadpulse/internal/user"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	AuthService       *auth.Service
	UserService       *user.Service
	IncidentService   *incident.Service
	RouteService      *route.Service
	NavigationService *navigation.Service
	Hub               *push.Hub
	AllowedOrigins    []string
	ReadinessProbes   []handler.Probe
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadpulse-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadinessProbes...)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	userHandler := handler.NewUserHandler(cfg.UserService)
	incidentHandler := handler.NewIncidentHandler(cfg.IncidentService)
	routeHandler := handler.NewRouteHandler(cfg.RouteService)
	statisticsHandler := handler.NewStatisticsHandler(cfg.IncidentService, cfg.RouteService)
	navigationHandler := handler.NewNavigationHandler(cfg.NavigationService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuth := middleware.OptionalAuth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// Ops endpoints (public)
	r.Route("/ops", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
	})

	// WebSocket push channel. Optional auth: anonymous clients may listen,
	// authenticated ones are bound to their user.
	if cfg.Hub != nil {
		r.With(optionalAuth).Get("/ws", push.Handler(cfg.Hub, cfg.AllowedOrigins, cfg.Logger))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON) // JSON content type

		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		// Current user (authenticated)
		r.With(authMiddleware).Get("/me", authHandler.Me)

		// Incidents
		r.Route("/incidents", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", incidentHandler.List)
			r.Get("/nearby", incidentHandler.Nearby)
			r.With(authMiddleware).Post("/", incidentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(authMiddleware)
				r.Post("/verify", incidentHandler.Verify)
				r.Put("/status", incidentHandler.SetStatus)
				r.Put("/", incidentHandler.Update)
				r.Delete("/", incidentHandler.Delete)
			})
		})

		// Statistics: the overview is public, contribution stats are per user
		r.Route("/statistics", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", statisticsHandler.Overview)
			r.With(authMiddleware).Get("/user", statisticsHandler.User)
		})

		// Saved routes
		r.Route("/routes", func(r chi.Router) {
			r.Use(standardRateLimit)
			// Share codes are public capabilities, no auth
			r.Get("/share/{code}", routeHandler.Share)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
				r.Post("/", routeHandler.Save)
				r.Get("/", routeHandler.List)
				r.Get("/recent", routeHandler.Recent)
				r.Delete("/{id}", routeHandler.Delete)
			})
		})

		// Navigation proxy - upstream calls are expensive
		r.Route("/navigation", func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.With(authMiddleware).Get("/route", navigationHandler.Route)
			r.Get("/search", navigationHandler.Search)
			r.Get("/reverse-geocode", navigationHandler.ReverseGeocode)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.With(authMiddleware, standardRateLimit).Get("/admin/incidents", incidentHandler.AdminList)
		r.With(authMiddleware, standardRateLimit).Get("/admin/routes", routeHandler.AdminList)
		r.Route("/users", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", userHandler.List)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	return r
}
