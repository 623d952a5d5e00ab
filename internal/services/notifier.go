package services

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// NotifyTargetLive is the public live feed: big wins, gift code drops,
	// synthetic activity.
	NotifyTargetLive = "live"

	// clientSendBuffer bounds the per-client outbound queue; events past it
	// are dropped rather than blocking a publisher.
	clientSendBuffer = 16
)

type Event struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Data   any    `json:"data"`
}

type hubClient struct {
	conn *websocket.Conn
	send chan any
}

// Hub fans events out to connected websocket clients. Each connection gets a
// buffered send channel drained by one writer goroutine, so all writes to a
// connection are serialized. It is a fire-and-forget sink: a failed or slow
// client is dropped, never reported to the caller, so a ledger commit is
// never rolled back or blocked by delivery.
type Hub struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*hubClient
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log.With().Str("component", "hub").Logger(),
		clients: make(map[*websocket.Conn]*hubClient),
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	c := &hubClient{conn: conn, send: make(chan any, clientSendBuffer)}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	go h.writeLoop(c)
	h.log.Debug().Int("clients", h.ClientCount()).Msg("client registered")
}

// Unregister removes the client and closes its send channel, ending the
// writer goroutine. Safe to call more than once per connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	if ok {
		close(c.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// writeLoop is the sole writer for one connection.
func (h *Hub) writeLoop(c *hubClient) {
	for payload := range c.send {
		if err := c.conn.WriteJSON(payload); err != nil {
			h.log.Warn().Err(err).Msg("dropping unreachable client")
			break
		}
	}
	h.Unregister(c.conn)
	c.conn.Close()
}

// enqueue pushes a payload to one client without blocking. The hub mutex is
// held by the caller, which also guarantees the channel cannot be closed
// concurrently.
func (h *Hub) enqueue(c *hubClient, payload any) {
	select {
	case c.send <- payload:
	default:
		h.log.Warn().Msg("client send buffer full, dropping event")
	}
}

// Notify implements Notifier. Errors and overflow are logged and swallowed.
func (h *Hub) Notify(target string, payload any) {
	event := Event{Type: "EVENT", Target: target, Data: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.enqueue(c, event)
	}
}

// Send queues a payload for a single connection through its writer goroutine.
// Unknown connections are ignored.
func (h *Hub) Send(conn *websocket.Conn, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[conn]; ok {
		h.enqueue(c, payload)
	}
}
