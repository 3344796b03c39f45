package notifications

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sonashow/internal/logging"
)

const writeWait = 5 * time.Second

// Envelope is the frame written to websocket clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	id   string
	conn Conn
	// mu serializes writes; gorilla connections allow one concurrent writer.
	mu sync.Mutex
}

// Hub broadcasts events to every connected websocket client.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	logger  *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		clients: make(map[string]*client),
		logger:  logging.NewComponentLogger(logger, "hub"),
	}
}

// Add registers a connection and returns its client id.
func (h *Hub) Add(conn Conn) string {
	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", logging.String("client_id", c.id), logging.Int("clients", count))
	return c.id
}

// Remove unregisters and closes a connection.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		_ = c.conn.Close()
		h.logger.Debug("client disconnected", logging.String("client_id", id))
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish broadcasts the event to all clients. Clients that fail a write are
// dropped.
func (h *Hub) Publish(event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		h.logger.Warn("event encode failed",
			logging.String(logging.FieldEventType, "hub_encode_failed"),
			logging.String("event", event),
			logging.Error(err))
		return
	}
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(frame); err != nil {
			h.Remove(c.id)
		}
	}
}

// SendTo writes the event to a single client.
func (h *Hub) SendTo(id, event string, payload any) error {
	h.mu.Lock()
	c, ok := h.clients[id]
	h.mu.Unlock()
	if !ok {
		return nil
	}
	frame, err := encode(event, payload)
	if err != nil {
		return err
	}
	if err := c.write(frame); err != nil {
		h.Remove(id)
		return err
	}
	return nil
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()
	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func (c *client) write(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func encode(event string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: payload})
}
