package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/carter293/reactive-notebook/internal/logger"
	"github.com/carter293/reactive-notebook/internal/observer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub upgrades requests into WebSocket clients; it keeps no list of
// them. Each client is registered as an observer.Subscriber for exactly
// one notebook (the observer.Manager holds the per-notebook set), and
// client.Deliver marshals the event and enqueues it on the connection's
// own buffered send channel so one slow client can never block another.
type Hub struct {
	log *logger.Logger
	mu  sync.Mutex
}

// NewHub returns an empty Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{log: log}
}

// client is one live WebSocket connection subscribed to a notebook.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	log  *logger.Logger
}

func (c *client) ID() string { return c.id }

// Deliver marshals event and enqueues it; a full buffer drops the event
// per spec.md §4.7's best-effort fanout — there is no per-subscriber
// queue beyond the live session.
func (c *client) Deliver(event observer.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump drains send onto the socket until it's closed.
func (c *client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readPump discards inbound frames (this channel is push-only) and
// exits when the client disconnects, signaling done.
func (c *client) readPump(done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// newClient upgrades r into a WebSocket connection and returns the
// resulting client, or nil if the upgrade failed (already responded).
func (h *Hub) newClient(w http.ResponseWriter, r *http.Request) *client {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.log != nil {
			h.log.Warn("websocket upgrade failed", "error", err)
		}
		return nil
	}
	return &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, 64), log: h.log}
}
