package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"shecare/internal/events"
	"shecare/internal/observability/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

const TypeConnected = "connected"

// Message is what admins receive over the socket.
type Message struct {
	Type         string        `json:"type"`
	ProviderName string        `json:"providerName,omitempty"`
	Event        *events.Event `json:"event,omitempty"`
}

type connection struct {
	provider string
	email    string
	conn     *websocket.Conn
	send     chan []byte
}

// Hub relays booking events to the admins of the provider they belong to.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*connection]struct{} // provider -> connections
	closed      bool
	metrics     *metrics.BookingMetrics
	logger      *zap.Logger
}

func NewHub(m *metrics.BookingMetrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		connections: make(map[string]map[*connection]struct{}),
		metrics:     m,
		logger:      logger,
	}
}

// register reports false once the hub is closed.
func (h *Hub) register(c *connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.connections[c.provider]
	if !ok {
		set = make(map[*connection]struct{})
		h.connections[c.provider] = set
	}
	set[c] = struct{}{}
	h.metrics.SetConnections(h.countLocked())
	return true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.provider]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.connections, c.provider)
	}
	close(c.send)
	h.metrics.SetConnections(h.countLocked())
}

// Broadcast sends evt to every connection of evt.ProviderName. Clients with
// a full buffer miss the event.
func (h *Hub) Broadcast(evt events.Event) {
	data, err := json.Marshal(Message{Type: evt.Type, ProviderName: evt.ProviderName, Event: &evt})
	if err != nil {
		h.logger.Warn("marshal realtime message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections[evt.ProviderName] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("realtime client too slow, dropping event", zap.String("email", c.email))
		}
	}
}

// Publish lets the hub sit on an event bus directly.
func (h *Hub) Publish(_ context.Context, evt events.Event) error {
	h.Broadcast(evt)
	return nil
}

func (h *Hub) ConnectionCount(provider string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[provider])
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.connections {
		n += len(set)
	}
	return n
}

// ServeWS pumps conn until the client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, providerName, email string) {
	c := &connection{
		provider: providerName,
		email:    email,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
	// queued while c.send is still private to this goroutine
	if hello, err := json.Marshal(Message{Type: TypeConnected, ProviderName: providerName}); err == nil {
		c.send <- hello
	}
	if !h.register(c) {
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c) // blocks until disconnect
}

// Close drops every connection and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for provider, set := range h.connections {
		for c := range set {
			close(c.send)
		}
		delete(h.connections, provider)
	}
	h.metrics.SetConnections(0)
}

// readPump only services control frames; admins do not send data.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
