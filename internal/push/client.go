package push

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed between pongs before the connection is
	// considered dead.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound messages. Clients only ever send the
	// small identify message.
	maxMessageSize = 512

	// sendBuffer is the per-client outbound queue. A client that falls
	// this far behind is disconnected by the hub.
	sendBuffer = 64
)

// Client is the middleman between one WebSocket connection and the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger

	// userID is the authenticated user the connection belongs to, or 0
	// for an anonymous connection.
	userID int64
}

// NewClient wraps an upgraded connection. userID is 0 for anonymous
// connections.
func NewClient(hub *Hub, conn *websocket.Conn, userID int64, logger zerolog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger.With().Str("component", "push_client").Int64("user_id", userID).Logger(),
		userID: userID,
	}
}

// Start registers the client and launches its pumps.
func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

// readPump consumes inbound messages until the connection drops. The only
// message clients send is identify; everything else is ignored.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg identifyMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Debug().Err(err).Msg("ignoring malformed message")
		return
	}
	if msg.Type != "identify" || msg.UserID == 0 {
		return
	}

	// An authenticated connection is already bound to its session user
	// and may not claim a different one.
	if c.userID != 0 {
		if msg.UserID != c.userID {
			c.logger.Warn().
				Int64("claimed_user_id", msg.UserID).
				Msg("identify for a different user ignored")
		}
		return
	}

	c.hub.identify <- identification{client: c, userID: msg.UserID}
}

// writePump delivers hub events and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				// The hub dropped this client.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
