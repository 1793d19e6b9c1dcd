package push

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// outboundBuffer bounds the hub's event queue. Publishing never blocks; a
// full queue drops the event for local delivery.
const outboundBuffer = 256

// Hub maintains the set of connected clients and fans events out to them.
// All client bookkeeping happens on the single Run goroutine, so no locks
// guard the maps.
type Hub struct {
	logger zerolog.Logger
	relay  *Relay

	register   chan *Client
	unregister chan *Client
	identify   chan identification
	outbound   chan []byte
	stats      chan chan HubStats

	clients map[*Client]struct{}
	byUser  map[int64]map[*Client]struct{}
	userOf  map[*Client]int64
}

// HubStats is a point-in-time snapshot of hub occupancy.
type HubStats struct {
	Clients         int `json:"clients"`
	IdentifiedUsers int `json:"identifiedUsers"`
}

// NewHub creates a new hub. relay may be nil for single-instance deployments.
func NewHub(logger zerolog.Logger, relay *Relay) *Hub {
	h := &Hub{
		logger:     logger.With().Str("component", "push_hub").Logger(),
		relay:      relay,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		identify:   make(chan identification),
		outbound:   make(chan []byte, outboundBuffer),
		stats:      make(chan chan HubStats),
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[int64]map[*Client]struct{}),
		userOf:     make(map[*Client]int64),
	}
	if relay != nil {
		relay.deliver = h.enqueue
	}
	return h
}

// Run processes hub events until ctx is cancelled. It must be called exactly
// once, before any client connects.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			if client.userID != 0 {
				h.bind(client, client.userID)
			}
			h.logger.Debug().
				Int64("user_id", client.userID).
				Int("clients", len(h.clients)).
				Msg("client connected")

		case client := <-h.unregister:
			h.drop(client)

		case ident := <-h.identify:
			h.bind(ident.client, ident.userID)

		case data := <-h.outbound:
			h.fanOut(data)

		case reply := <-h.stats:
			reply <- HubStats{
				Clients:         len(h.clients),
				IdentifiedUsers: len(h.byUser),
			}

		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// bind associates a client with a user. Rebinding moves the client between
// users, which only anonymous connections are allowed to do; the read pump
// enforces that before sending the identification.
func (h *Hub) bind(client *Client, userID int64) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	if previous, ok := h.userOf[client]; ok {
		if previous == userID {
			return
		}
		h.unbind(client, previous)
	}

	clients, ok := h.byUser[userID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.byUser[userID] = clients
	}
	clients[client] = struct{}{}
	h.userOf[client] = userID

	h.logger.Debug().Int64("user_id", userID).Msg("client identified")
}

func (h *Hub) unbind(client *Client, userID int64) {
	if clients, ok := h.byUser[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.byUser, userID)
		}
	}
	delete(h.userOf, client)
}

// drop unregisters a client. The reverse map makes the per-user cleanup a
// constant-time lookup instead of a scan over all users.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if userID, ok := h.userOf[client]; ok {
		h.unbind(client, userID)
	}
	close(client.send)

	h.logger.Debug().Int("clients", len(h.clients)).Msg("client disconnected")
}

// fanOut delivers data to every connected client. A client whose send
// buffer is full is dropped rather than allowed to stall the others.
func (h *Hub) fanOut(data []byte) {
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().
				Int64("user_id", h.userOf[client]).
				Msg("client send buffer full, dropping connection")
			h.drop(client)
		}
	}
}

// enqueue queues data for local fan-out without blocking the caller.
func (h *Hub) enqueue(data []byte) {
	select {
	case h.outbound <- data:
	default:
		h.logger.Warn().Msg("outbound queue full, dropping event")
	}
}

// publish queues an event for local fan-out and, when a relay is
// configured, for delivery to the other API instances.
func (h *Hub) publish(eventType string, incident models.Incident) {
	data, err := json.Marshal(Event{Type: eventType, Incident: incident})
	if err != nil {
		h.logger.Error().Err(err).Str("event", eventType).Msg("failed to marshal event")
		return
	}

	h.enqueue(data)
	if h.relay != nil {
		h.relay.Publish(data)
	}
}

// IncidentCreated announces a newly reported incident.
func (h *Hub) IncidentCreated(incident models.Incident) {
	h.publish(EventNewIncident, incident)
}

// IncidentUpdated announces changed verification counters or an admin edit.
func (h *Hub) IncidentUpdated(incident models.Incident) {
	h.publish(EventIncidentUpdate, incident)
}

// IncidentStatusChanged announces an activation or resolution.
func (h *Hub) IncidentStatusChanged(incident models.Incident) {
	h.publish(EventIncidentStatusChange, incident)
}

// Stats reports current hub occupancy. Returns zeros if the hub has
// stopped.
func (h *Hub) Stats(ctx context.Context) HubStats {
	reply := make(chan HubStats, 1)
	select {
	case h.stats <- reply:
		return <-reply
	case <-ctx.Done():
		return HubStats{}
	}
}
