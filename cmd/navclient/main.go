// Package main provides a terminal navigation client. It connects to the
// RoadPulse push channel, runs incoming incidents through the proximity
// evaluator and shows alerts the way the mobile client would. Keyboard
// commands resolve the displayed alert: d dismisses, r reroutes around it.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/alert"
	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/push"
	"github.com/roadpulse/roadpulse/pkg/geo"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "RoadPulse API base URL")
		token     = flag.String("token", os.Getenv("ROADPULSE_TOKEN"), "bearer token")
		userID    = flag.Int64("user", 0, "user ID to identify as")
		lat       = flag.Float64("lat", 48.8566, "current position latitude")
		lon       = flag.Float64("lon", 2.3522, "current position longitude")
		destLat   = flag.Float64("dest-lat", 0, "destination latitude, enables rerouting")
		destLon   = flag.Float64("dest-lon", 0, "destination longitude")
		routeLine = flag.String("route", "", "encoded polyline of the active route")
		radius    = flag.Float64("radius", 0, "alert radius in meters (default 5000)")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger()

	fix := &geo.Point{Lat: *lat, Lon: *lon}
	routePath := alert.PathFromPolyline(*routeLine)
	if *routeLine != "" && routePath == nil {
		log.Fatal().Msg("could not decode route polyline")
	}

	evaluator := alert.NewEvaluator(alert.EvaluatorConfig{
		AlertRadiusMeters: *radius,
		Logger:            log,
	})

	var rerouter alert.Rerouter
	if *destLat != 0 || *destLon != 0 {
		rerouter = &apiRerouter{
			baseURL: strings.TrimRight(*serverURL, "/"),
			token:   *token,
			client:  &http.Client{Timeout: 15 * time.Second},
			origin:  *fix,
			dest:    geo.Point{Lat: *destLat, Lon: *destLon},
		}
	}

	manager := alert.NewManager(alert.ManagerConfig{
		Rerouter: rerouter,
		Logger:   log,
		OnDisplay: func(c alert.Candidate) {
			comment := ""
			if c.Incident.Comment != nil {
				comment = " - " + *c.Incident.Comment
			}
			fmt.Printf("\n!! %s ahead, %.0f m away%s  [d]ismiss  [r]eroute\n",
				strings.ToUpper(c.Incident.Type), c.DistanceMeters, comment)
		},
		OnResolve: func(c alert.Candidate, outcome alert.Outcome) {
			fmt.Printf("   alert for incident %d %s\n", c.Incident.ID, outcome)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := dial(ctx, *serverURL, *token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to push channel")
	}
	defer conn.Close()

	if *userID != 0 {
		identify := map[string]interface{}{"type": "identify", "userId": *userID}
		if err := conn.WriteJSON(identify); err != nil {
			log.Fatal().Err(err).Msg("failed to identify")
		}
	}
	fmt.Printf("connected to %s, watching for incidents around %.4f,%.4f\n", *serverURL, *lat, *lon)

	// Keyboard commands resolve the displayed alert.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			switch strings.TrimSpace(scanner.Text()) {
			case "d":
				if err := manager.Dismiss(); err != nil {
					fmt.Println("   no alert displayed")
				}
			case "r":
				if err := manager.Reroute(ctx); err != nil {
					fmt.Printf("   reroute failed: %v\n", err)
				}
			case "q":
				stop()
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	}()

	for {
		var event push.Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				fmt.Println("\nbye")
				return
			}
			log.Fatal().Err(err).Msg("push channel closed")
		}

		switch event.Type {
		case push.EventNewIncident, push.EventIncidentUpdate:
			if !event.Incident.Active {
				continue
			}
			candidate, relevant := evaluator.Evaluate(event.Incident, *userID, fix, routePath)
			if relevant {
				manager.Offer(candidate)
			}
		case push.EventIncidentStatusChange:
			if !event.Incident.Active {
				log.Info().Int64("incident_id", event.Incident.ID).Msg("incident resolved")
			}
		}
	}
}

// dial upgrades the API base URL to a websocket connection on /ws.
func dial(ctx context.Context, baseURL, token string) (*websocket.Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if resp != nil {
		defer resp.Body.Close()
	}
	return conn, err
}

// apiRerouter recomputes the route through the navigation API, steering
// around the incident.
type apiRerouter struct {
	baseURL string
	token   string
	client  *http.Client
	origin  geo.Point
	dest    geo.Point
}

func (r *apiRerouter) Reroute(ctx context.Context, incident models.Incident, avoidRadiusMeters float64) error {
	incLat, err := strconv.ParseFloat(incident.Latitude, 64)
	if err != nil {
		return fmt.Errorf("parsing incident latitude: %w", err)
	}
	incLon, err := strconv.ParseFloat(incident.Longitude, 64)
	if err != nil {
		return fmt.Errorf("parsing incident longitude: %w", err)
	}

	query := url.Values{}
	query.Set("originLat", strconv.FormatFloat(r.origin.Lat, 'f', -1, 64))
	query.Set("originLon", strconv.FormatFloat(r.origin.Lon, 'f', -1, 64))
	query.Set("destLat", strconv.FormatFloat(r.dest.Lat, 'f', -1, 64))
	query.Set("destLon", strconv.FormatFloat(r.dest.Lon, 'f', -1, 64))
	query.Set("avoidLat", strconv.FormatFloat(incLat, 'f', -1, 64))
	query.Set("avoidLon", strconv.FormatFloat(incLon, 'f', -1, 64))
	query.Set("avoidRadius", strconv.FormatFloat(avoidRadiusMeters, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+"/api/navigation/route?"+query.Encode(), http.NoBody)
	if err != nil {
		return err
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("navigation API returned %d", resp.StatusCode)
	}

	var routes models.NavigationRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&routes); err != nil {
		return err
	}
	if len(routes.Routes) == 0 {
		return fmt.Errorf("no alternative route found")
	}

	summary := routes.Routes[0].Summary
	fmt.Printf("   new route: %.1f km, %d min\n",
		float64(summary.LengthMeters)/1000, summary.TravelTimeSeconds/60)
	return nil
}
