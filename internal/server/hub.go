package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-dashboard/internal/dataset"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 16
)

// EventType names a message pushed to websocket clients.
type EventType string

const (
	// EventHello is sent once on connect with the current dataset.
	EventHello EventType = "hello"
	// EventRefresh is sent after every successful dataset refresh.
	EventRefresh EventType = "refresh"
)

// Event is the JSON envelope pushed to websocket clients. Clients re-request
// their chart when the generation changes.
type Event struct {
	Type       EventType `json:"type"`
	Symbol     string    `json:"symbol"`
	Generation string    `json:"generation"`
	Bars       int       `json:"bars"`
	Source     string    `json:"source,omitempty"`
	LoadedAt   time.Time `json:"loaded_at"`
}

func newEvent(eventType EventType, symbol string, snapshot dataset.Snapshot) Event {
	return Event{
		Type:       eventType,
		Symbol:     symbol,
		Generation: snapshot.Generation,
		Bars:       len(snapshot.Bars),
		Source:     snapshot.Source,
		LoadedAt:   snapshot.LoadedAt,
	}
}

// Hub tracks connected websocket clients and fans out events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	closed  bool
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewHub creates an empty hub. m may be nil.
func NewHub(m *metrics.Metrics, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Hub{
		mu:      sync.RWMutex{},
		clients: make(map[*client]bool),
		metrics: m,
		log:     log,
	}
}

// Broadcast sends event to every client. Slow clients whose buffer is full
// miss the event rather than block the sender.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to encode websocket event", zap.Error(err))

		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn("Dropping websocket event for slow client", zap.String("type", string(event.Type)))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Close disconnects every client. Clients connecting afterwards are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]bool)
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
	}

	if h.metrics != nil {
		h.metrics.WSClients.Set(0)
	}
}

// add registers c. It returns false once the hub is closed.
func (h *Hub) add(c *client) bool {
	h.mu.Lock()

	if h.closed {
		h.mu.Unlock()

		return false
	}

	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}

	h.log.Debug("Websocket client connected", zap.Int("clients", count))

	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()

	if !h.clients[c] {
		h.mu.Unlock()

		return
	}

	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}

	h.log.Debug("Websocket client disconnected", zap.Int("clients", count))
}

// client is a single websocket peer.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// writePump forwards queued events to the connection and keeps it alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages and detects disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
