package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"predictd/internal/manager"
)

const (
	eventSendBuffer = 64
	eventWriteWait  = 10 * time.Second
	eventPingPeriod = 30 * time.Second
)

// eventMessage is the JSON frame sent to stream clients.
type eventMessage struct {
	Type      string         `json:"type"`
	ModelID   string         `json:"model_id,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type eventClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub fans manager events out to websocket clients. It implements
// manager.EventPublisher; slow clients are dropped instead of blocking Publish.
type EventHub struct {
	mu       sync.Mutex
	clients  map[*eventClient]struct{}
	closed   bool
	upgrader websocket.Upgrader
}

var _ manager.EventPublisher = (*EventHub)(nil)

// NewEventHub creates a hub. checkOrigin may be nil to accept any origin.
func NewEventHub(checkOrigin func(*http.Request) bool) *EventHub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &EventHub{
		clients: make(map[*eventClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Publish broadcasts e to all connected clients without blocking.
func (h *EventHub) Publish(e manager.Event) {
	b, err := json.Marshal(eventMessage{Type: e.Name, ModelID: e.ModelID, Fields: e.Fields, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.removeLocked(c)
		}
	}
}

// Clients reports the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new ones.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *EventHub) removeLocked(c *eventClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	eventClients.Dec()
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects or the hub closes.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger().Debug().Err(err).Msg("event stream upgrade failed")
		return
	}
	c := &eventClient{conn: conn, send: make(chan []byte, eventSendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	eventClients.Inc()
	h.mu.Unlock()

	go h.readPump(c)
	h.writePump(c)
}

// readPump drains client frames so control messages are processed and a
// closed connection is noticed.
func (h *EventHub) readPump(c *eventClient) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventHub) writePump(c *eventClient) {
	ticker := time.NewTicker(eventPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
