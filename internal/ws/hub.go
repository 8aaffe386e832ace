package ws

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"energy_dashboard/internal/observability/metrics"
)

const sendBuffer = 256

// Client is one connected dashboard view.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Hub fans dashboard messages out to every joined view.
type Hub struct {
	mu    sync.RWMutex
	views map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		views: make(map[*Client]struct{}),
	}
}

// Join adds c and queues the greeting as its first message. Broadcasts
// wait for Join, so c never sees a change older than its greeting.
func (h *Hub) Join(c *Client, greeting func() ([]byte, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if greeting != nil {
		msg, err := greeting()
		if err != nil {
			return err
		}
		c.send <- msg
	}
	h.views[c] = struct{}{}
	metrics.SetConnectedViews(len(h.views))
	return nil
}

// Leave removes c and closes its queue. Leaving twice is a no-op.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.views[c]; !ok {
		return
	}
	delete(h.views, c)
	close(c.send)
	metrics.SetConnectedViews(len(h.views))
}

// Broadcast queues msg for every view. A view whose queue is full misses
// the message.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.views {
		select {
		case c.send <- msg:
		default:
			log.Printf("view %s queue full, dropping message", c.id)
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
