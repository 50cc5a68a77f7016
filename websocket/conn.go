package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps one accepted websocket connection. Writes are serialized behind
// a mutex: gorilla connections allow a single concurrent writer, and the
// fan-out path can emit from several requests at once.
type Conn struct {
	id string

	writeMu sync.Mutex
	ws      *websocket.Conn
}

func newConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{id: id, ws: ws}
}

func (c *Conn) ID() string {
	return c.id
}

// Emit sends event(payload) to the client. Failing to reach a connection
// that has gone away returns an error the caller is expected to treat as a
// skip, not a failure.
func (c *Conn) Emit(event string, payload interface{}) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(env)
}

func (c *Conn) close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.ws.WriteMessage(websocket.CloseMessage, msg)
	return c.ws.Close()
}
