package ws

import (
	"encoding/json"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeCSVUpload  = "csv:upload"
	TypeCacheClear = "cache:clear"

	// Server -> Client
	TypeDashboardState = "dashboard:state" // payload: dashboard.Snapshot
	TypeNotification   = "notification"    // payload: model.Notification
)

// Client -> Server messages

// CSVUploadPayload carries a whole CSV file as text, the way a browser
// FileReader hands it over.
type CSVUploadPayload struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
