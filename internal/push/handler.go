package push

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/api/middleware"
)

// Handler upgrades HTTP requests to WebSocket connections on the hub.
func Handler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			logger.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := NewClient(hub, conn, middleware.GetUserID(r.Context()), logger)
		client.Start()
	}
}

// originChecker allows same-host requests plus the configured origins. An
// empty list allows everything, which suits local development.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		allowedSet[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowedSet[origin]
		return ok
	}
}
