package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents an outbound WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// Command is an inbound client message, e.g. {"action":"steer","direction":"up"}
type Command struct {
	Action    string `json:"action"`
	Direction string `json:"direction,omitempty"`
}

// SteerFunc applies a steering command to a session and returns the new state
type SteerFunc func(ctx context.Context, sessionID, direction string) (*engine.GameState, error)

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type envelope struct {
	sessionID string
	data      []byte
}

type reply struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages for every client of a session
	broadcast chan envelope

	// Outbound messages for a single client
	replies chan reply

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Count requests, answered on the Run goroutine
	counts chan chan map[string]int

	steer SteerFunc
	done  chan struct{}
}

// NewHub creates a new WebSocket hub. steer may be nil, in which case inbound
// steering commands are rejected.
func NewHub(steer SteerFunc) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 64),
		replies:    make(chan reply, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan chan map[string]int),
		steer:      steer,
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.broadcastMessage(env)

		case r := <-h.replies:
			h.sendTo(r.client, r.data)

		case resp := <-h.counts:
			counts := make(map[string]int, len(h.sessions))
			for id, clients := range h.sessions {
				counts[id] = len(clients)
			}
			resp <- counts
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.publish(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     "state_update",
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.publish(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// ClientCount returns the number of clients attached to sessionID
func (h *Hub) ClientCount(sessionID string) int {
	resp := make(chan map[string]int, 1)
	select {
	case h.counts <- resp:
		return (<-resp)[sessionID]
	case <-h.done:
		return 0
	}
}

func (h *Hub) publish(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.WithError(err).WithField("session", message.SessionID).Error("failed to marshal websocket message")
		return
	}

	select {
	case h.broadcast <- envelope{sessionID: message.SessionID, data: data}:
	case <-h.done:
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.WithFields(log.Fields{
		"session": client.sessionID,
		"clients": len(h.sessions[client.sessionID]),
	}).Debug("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.WithFields(log.Fields{
		"session": client.sessionID,
		"clients": len(clients),
	}).Debug("websocket client unregistered")
}

// broadcastMessage sends data to all clients in a session
func (h *Hub) broadcastMessage(env envelope) {
	for client := range h.sessions[env.sessionID] {
		h.sendTo(client, env.data)
	}
}

// sendTo queues data for a registered client, dropping clients that fall behind
func (h *Hub) sendTo(client *Client, data []byte) {
	if !h.sessions[client.sessionID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

// handleCommand applies one inbound command and returns the reply, if any
func (h *Hub) handleCommand(sessionID string, raw []byte) *Message {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return &Message{SessionID: sessionID, Event: "error", Data: "invalid command: " + err.Error()}
	}

	switch cmd.Action {
	case "ping":
		return &Message{SessionID: sessionID, Event: "pong"}
	case "steer":
		if h.steer == nil {
			return &Message{SessionID: sessionID, Event: "error", Data: "steering is not enabled"}
		}
		state, err := h.steer(context.Background(), sessionID, cmd.Direction)
		if err != nil {
			return &Message{SessionID: sessionID, Event: "error", Data: err.Error()}
		}
		// every client of the session sees the new heading
		h.BroadcastToSession(sessionID, state)
		return nil
	}
	return &Message{SessionID: sessionID, Event: "error", Data: "unknown action: " + cmd.Action}
}

// readPump reads commands from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("session", c.sessionID).Warn("websocket read failed")
			}
			break
		}

		msg := c.hub.handleCommand(c.sessionID, raw)
		if msg == nil {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		select {
		case c.hub.replies <- reply{client: c, data: data}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
