// Package stream pushes audit log entries to websocket subscribers as they
// happen, so a frontend can show claims and transfers live instead of
// polling the events endpoint.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/web/api"
)

const (
	// writeWait bounds a single frame write to a slow client
	writeWait = 10 * time.Second

	// sendBuffer is the per-client backlog before the client is dropped
	sendBuffer = 32
)

// Hub fans audit entries out to connected websocket clients.
// A client that cannot keep up is disconnected rather than allowed
// to stall the broadcast.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub ready to accept websocket connections
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
}

// Run broadcasts entries until the stream closes or the context is cancelled.
// It returns a done channel that closes once every client is disconnected.
func (h *Hub) Run(ctx context.Context, entries <-chan audit.Entry) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer h.closeAll()

		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				h.broadcast(entry)
			}
		}
	}()

	return done
}

// ServeHTTP upgrades the connection and registers it for broadcasts
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast queues the entry for every connected client
func (h *Hub) broadcast(entry audit.Entry) {
	payload, err := json.Marshal(toAPIEvent(entry))
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop it so the rest keep receiving
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// writePump drains the client's send queue onto the wire
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(c)
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards inbound frames and detects the client going away
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

// remove unregisters the client if it is still registered
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// closeAll disconnects every client on shutdown
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// toAPIEvent renders an audit entry in the same shape the events endpoint serves
func toAPIEvent(entry audit.Entry) api.Event {
	ev := api.Event{
		Sequence:   strconv.FormatUint(entry.Sequence, 10),
		ID:         entry.ID.String(),
		Kind:       entry.Kind,
		OccurredAt: entry.OccurredAt.Format(time.RFC3339),
	}

	switch e := entry.Event.(type) {
	case audit.Transfer:
		ev.Account = e.To.String()
		ev.Counterparty = e.From.String()
		ev.Amount = e.Amount.Dec()
	case audit.Approval:
		ev.Account = e.Owner.String()
		ev.Counterparty = e.Spender.String()
		ev.Amount = e.Amount.Dec()
	case audit.MinterChanged:
		ev.Account = e.NewMinter.String()
	case audit.TokensClaimed:
		ev.Account = e.Account.String()
		ev.Amount = e.Amount.Dec()
	case audit.PauseChanged:
		paused := e.Paused
		ev.Paused = &paused
	}

	return ev
}
