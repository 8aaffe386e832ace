package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"energy_dashboard/internal/dashboard"
	"energy_dashboard/internal/model"
)

// maxMessageBytes bounds a single client message, which may carry a whole
// CSV file.
const maxMessageBytes = 32 << 20

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes messages to the
// dashboard effects.
type Handler struct {
	hub     *Hub
	effects *dashboard.Effects
}

func NewHandler(hub *Hub, effects *dashboard.Effects) *Handler {
	return &Handler{hub: hub, effects: effects}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	// A new view renders the current dashboard before any change
	client := newClient(conn)
	err = h.hub.Join(client, func() ([]byte, error) {
		return NewEnvelope(TypeDashboardState, h.effects.State.Snapshot())
	})
	if err != nil {
		log.Printf("Error greeting view %s: %v", client.id, err)
		conn.Close()
		return
	}
	go client.writePump()

	h.readPump(r.Context(), client)
}

func (h *Handler) readPump(ctx context.Context, c *Client) {
	defer func() {
		h.hub.Leave(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error (view %s): %v", c.id, err)
			}
			return
		}

		h.handleMessage(ctx, c, msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeCSVUpload:
		var p CSVUploadPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("Invalid csv:upload payload: %v", err)
			return
		}
		if p.FileName == "" {
			p.FileName = "upload.csv"
		}
		_, err := h.effects.Upload(ctx, "ws", p.FileName, strings.NewReader(p.Content))
		if err != nil {
			log.Printf("Upload of %s: %v", p.FileName, err)
		}
		if err != nil && !errors.Is(err, dashboard.ErrNotCached) {
			h.send(c, TypeNotification, model.Notification{
				Title:       "Upload failed",
				Description: err.Error(),
				Level:       model.LevelError,
			})
		}

	case TypeCacheClear:
		if err := h.effects.ClearCache(ctx); err != nil {
			log.Printf("Clearing cache failed: %v", err)
		}

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

// send queues a message for one client only.
func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Printf("Error creating %s message: %v", msgType, err)
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
