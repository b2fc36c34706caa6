package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

// client is one websocket connection with its own writer goroutine.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump(logger *slog.Logger) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// hub tracks connected clients and fans messages out to them.
type hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	logger  *slog.Logger
	metrics *serverMetrics
}

func newHub(logger *slog.Logger, m *serverMetrics) *hub {
	return &hub{
		clients: make(map[*client]bool),
		logger:  logger,
		metrics: m,
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.clients.Set(float64(n))
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.clients.Set(float64(n))
}

// send queues msg for c.
func (h *hub) send(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode message", "type", msg.Type, "error", err)
		return
	}
	h.deliver([]*client{c}, data)
}

// broadcast sends msg to all clients.
func (h *hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode message", "type", msg.Type, "error", err)
		return
	}
	h.deliver(nil, data)
}

// deliver queues data for targets, or for every client when targets is
// nil. Clients whose buffer is full are dropped.
func (h *hub) deliver(targets []*client, data []byte) {
	var slow []*client

	h.mu.RLock()
	if targets == nil {
		targets = make([]*client, 0, len(h.clients))
		for c := range h.clients {
			targets = append(targets, c)
		}
	}
	for _, c := range targets {
		if !h.clients[c] {
			continue
		}
		select {
		case c.send <- data:
			h.metrics.messagesSent.Inc()
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("client too slow, dropping connection")
		h.unregister(c)
	}
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// close disconnects every client.
func (h *hub) close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]bool)
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
	}
	h.metrics.clients.Set(0)
}
