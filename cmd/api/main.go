// Package main provides the entrypoint for the RoadPulse API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/api"
	"github.com/roadpulse/roadpulse/internal/api/handler"
	"github.com/roadpulse/roadpulse/internal/api/middleware"
	"github.com/roadpulse/roadpulse/internal/auth"
	"github.com/roadpulse/roadpulse/internal/database"
	"github.com/roadpulse/roadpulse/internal/incident"
	"github.com/roadpulse/roadpulse/internal/navigation"
	"github.com/roadpulse/roadpulse/internal/navigation/tomtom"
	"github.com/roadpulse/roadpulse/internal/provider/resilience"
	"github.com/roadpulse/roadpulse/internal/push"
	"github.com/roadpulse/roadpulse/internal/route"
	"github.com/roadpulse/roadpulse/internal/telemetry"
	"github.com/roadpulse/roadpulse/internal/user"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "roadpulse-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RoadPulse API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize auth repositories and service
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	authService := auth.NewService(auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{
			SigningKey: jwtSigningKey,
			Issuer:     "https://api.roadpulse.io",
			Audience:   "roadpulse-api",
		}),
		UserRepo:    auth.NewPostgresUserRepository(pool),
		RefreshRepo: auth.NewPostgresRefreshTokenRepository(pool),
	})
	log.Info().Msg("auth service initialized")

	// Initialize the push hub, with a Pub/Sub relay when running
	// multi-instance
	var relay *push.Relay
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		relay, err = push.NewRelay(ctx, push.RelayConfig{
			ProjectID:        projectID,
			TopicName:        getenv("PUBSUB_TOPIC", "incident-events"),
			SubscriptionName: getenv("PUBSUB_SUBSCRIPTION", "incident-events-sub"),
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub relay")
		}
		defer relay.Close() //nolint:errcheck // best-effort cleanup on shutdown
		log.Info().Str("project", projectID).Msg("pubsub relay initialized")
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()

	hub := push.NewHub(log, relay)
	go hub.Run(hubCtx)
	if relay != nil {
		go func() {
			if err := relay.Start(hubCtx); err != nil {
				log.Error().Err(err).Msg("pubsub relay stopped")
			}
		}()
	}
	log.Info().Msg("push hub started")

	// Initialize domain services
	incidentService := incident.NewService(incident.NewPostgresRepository(pool), hub)
	log.Info().Msg("incident service initialized")

	routeService := route.NewService(route.NewPostgresRepository(pool))
	log.Info().Msg("route service initialized")

	tomtomKey := os.Getenv("TOMTOM_API_KEY")
	if tomtomKey == "" {
		log.Warn().Msg("TOMTOM_API_KEY not set - navigation endpoints will fail")
	}
	providerRegistry := resilience.NewRegistry()
	navigationService := navigation.NewService(navigation.ServiceConfig{
		Provider: tomtom.NewClient(tomtom.ClientConfig{
			APIKey:   tomtomKey,
			Registry: providerRegistry,
			Logger:   log,
		}),
		Logger: log,
	})
	log.Info().Msg("navigation service initialized")

	userService := user.NewService(user.NewPostgresRepository(pool))
	log.Info().Msg("user service initialized")

	var allowedOrigins []string
	if raw := os.Getenv("WS_ALLOWED_ORIGINS"); raw != "" {
		allowedOrigins = strings.Split(raw, ",")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		AuthService:       authService,
		UserService:       userService,
		IncidentService:   incidentService,
		RouteService:      routeService,
		NavigationService: navigationService,
		Hub:               hub,
		AllowedOrigins:    allowedOrigins,
		ReadinessProbes: []handler.Probe{
			{Name: "postgres", Check: pool.Ping},
			{Name: "tomtom", Check: func(context.Context) error {
				if health := providerRegistry.GetHealth(tomtom.ProviderName); health != nil && health.IsUnhealthy() {
					return fmt.Errorf("circuit open: %s", health.LastError)
				}
				return nil
			}},
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	stopHub()
	log.Info().Msg("server stopped")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
