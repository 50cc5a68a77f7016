// Package websocket carries the socket protocol between the server and its
// live client sessions: a thin JSON envelope over gorilla/websocket.
package websocket

import (
	"encoding/json"
)

// Envelope frames every message on the socket, both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope marshals payload into a ready-to-send envelope.
func NewEnvelope(event string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Data: data}, nil
}
