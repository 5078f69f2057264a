package server

import (
	"time"

	"github.com/CK6170/forcescale-go/scale"
)

type APIError struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Sessions  int       `json:"sessions"`
	IDs       []string  `json:"sessionIds"`
}

type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// DisplayDTO is a DisplayState plus the text the page should show.
type DisplayDTO struct {
	scale.DisplayState
	Text string `json:"text"`
}

func newDisplayDTO(st scale.DisplayState) DisplayDTO {
	return DisplayDTO{DisplayState: st, Text: st.Text()}
}

type SessionStateResponse struct {
	SessionID string     `json:"sessionId"`
	Display   DisplayDTO `json:"display"`
	Force     float64    `json:"force"`
	Offset    float64    `json:"offset"`
	Label     string     `json:"label"`
	Clients   int        `json:"clients"`
}

type EventResponse struct {
	Display DisplayDTO `json:"display"`
	Handled bool       `json:"handled"`
	Label   string     `json:"label,omitempty"`
}

type LabelDTO struct {
	Label string `json:"label"`
}

// WebSocket message types sent to the page.
const (
	msgSession = "session"
	msgDisplay = "display"
	msgLabel   = "label"
	msgError   = "error"
)
