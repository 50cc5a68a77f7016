package client

import (
	"context"
	"encoding/json"
	"sync"

	gorilla "github.com/gorilla/websocket"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/log"
	"github.com/DBall8/enotes/websocket"
)

// Listener is the socket half of a client session. It dials the server's
// socket endpoint, answers the ready handshake with the session's username,
// and feeds every fan-out event into the store.
type Listener struct {
	store  *Store
	logger log.Logger

	mu sync.Mutex
	ws *gorilla.Conn
}

func NewListener(store *Store, logger log.Logger) *Listener {
	return &Listener{store: store, logger: logger}
}

// Listen dials url (a ws:// or wss:// address) and blocks reading events
// until the connection drops or ctx is cancelled. The caller owns
// reconnecting; a reconnect that lands on a new connection id triggers a
// full resync because fan-out events may have been missed in between.
func (l *Listener) Listen(ctx context.Context, url string) error {
	ws, _, err := gorilla.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.ws = ws
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		var env websocket.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if env.Event == enotes.EventReady {
			if err := l.handshake(ctx, ws, env.Data); err != nil {
				return err
			}
			continue
		}

		l.store.OnRemoteEvent(env.Event, env.Data)
	}
}

// Close tears the connection down. Listen returns once the read loop sees
// the closed socket.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ws != nil {
		l.ws.Close()
		l.ws = nil
	}
}

func (l *Listener) handshake(ctx context.Context, ws *gorilla.Conn, data json.RawMessage) error {
	var connID string
	if err := json.Unmarshal(data, &connID); err != nil {
		l.logger.Errorf("bad ready payload: %v", err)
		return err
	}

	// A previous socket id means this is a reconnect: anything broadcast
	// while offline is gone, so pull fresh state.
	resync := l.store.SocketID() != ""
	l.store.SetSocketID(connID)

	reply, err := websocket.NewEnvelope(enotes.EventReady, l.store.Username())
	if err != nil {
		return err
	}
	if err := ws.WriteJSON(reply); err != nil {
		return err
	}

	if resync {
		if err := l.store.Refresh(ctx); err != nil {
			l.logger.Errorf("could not resync after reconnect: %v", err)
		}
	}
	return nil
}
