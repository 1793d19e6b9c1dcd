// Package push fans incident lifecycle events out to connected WebSocket
// clients, optionally relayed across API instances over Pub/Sub.
package push

import (
	"github.com/roadpulse/roadpulse/internal/api/models"
)

// Event types pushed to clients.
const (
	EventNewIncident          = "new_incident"
	EventIncidentUpdate       = "incident_update"
	EventIncidentStatusChange = "incident_status_change"
)

// Event is the wire envelope for an incident push message.
type Event struct {
	Type     string          `json:"type"`
	Incident models.Incident `json:"incident"`
}

// identifyMessage is the only inbound message clients send. It associates
// the connection with a user for session bookkeeping.
type identifyMessage struct {
	Type   string `json:"type"`
	UserID int64  `json:"userId"`
}

// identification is the hub-internal binding request.
type identification struct {
	client *Client
	userID int64
}
