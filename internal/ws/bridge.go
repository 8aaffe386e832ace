package ws

import (
	"log"

	"energy_dashboard/internal/dashboard"
	"energy_dashboard/internal/model"
)

// Bridge implements dashboard.Listener and broadcasts changes to the
// WebSocket hub.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnSnapshot(s dashboard.Snapshot) {
	msg, err := NewEnvelope(TypeDashboardState, s)
	if err != nil {
		log.Printf("Error marshaling dashboard state: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnNotification(n model.Notification) {
	msg, err := NewEnvelope(TypeNotification, n)
	if err != nil {
		log.Printf("Error marshaling notification: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}
