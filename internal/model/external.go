package model

import (
	"encoding/json"
	"time"
)

// UserProfile is the document kept for a signed-in user.
type UserProfile struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	ElectricityProvider string `json:"electricityProvider"`
}

// Weather is the subset of a weather provider response the dashboard shows.
// Raw keeps the full untyped body.
type Weather struct {
	Name        string          `json:"name"`
	TempC       float64         `json:"temp_c"`
	Description string          `json:"description"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// TOURate is one entry of the time-of-use tariff history.
type TOURate struct {
	Rate          float64   `json:"rate"` // ₹/kWh
	Period        string    `json:"period,omitempty"`
	EffectiveFrom time.Time `json:"effective_from,omitzero"`
}

// Discom describes an electricity distribution company.
type Discom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state,omitempty"`
	Website  string `json:"website,omitempty"`
	Helpline string `json:"helpline,omitempty"`
}

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient message surfaced to the user.
type Notification struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Level       NotificationLevel `json:"level"`
}
