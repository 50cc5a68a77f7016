package mock

import (
	"errors"
	"sync"
)

// Emission is one event recorded by a Conn.
type Emission struct {
	Event   string
	Payload interface{}
}

// Conn records everything emitted to it. Setting Stale makes every Emit fail
// the way a closed websocket would.
type Conn struct {
	mu        sync.Mutex
	ConnID    string
	Stale     bool
	Emissions []Emission
}

func (c *Conn) ID() string {
	return c.ConnID
}

func (c *Conn) Emit(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Stale {
		return errors.New("connection closed")
	}
	c.Emissions = append(c.Emissions, Emission{Event: event, Payload: payload})
	return nil
}

func (c *Conn) Received() []Emission {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Emission, len(c.Emissions))
	copy(out, c.Emissions)
	return out
}

// Broadcaster records BroadcastExcept calls for asserting on fan-out
// behavior without a registry.
type Broadcaster struct {
	mu    sync.Mutex
	Calls []BroadcastCall
}

type BroadcastCall struct {
	Username string
	Event    string
	Payload  interface{}
	ExceptID string
}

func (b *Broadcaster) BroadcastExcept(username, event string, payload interface{}, exceptID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, BroadcastCall{
		Username: username,
		Event:    event,
		Payload:  payload,
		ExceptID: exceptID,
	})
}

func (b *Broadcaster) Recorded() []BroadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BroadcastCall, len(b.Calls))
	copy(out, b.Calls)
	return out
}
