package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/log"
	"github.com/DBall8/enotes/websocket"
)

// socketServer is the server side of one listener test: it accepts a single
// connection and hands it to the test to drive the protocol by hand.
func socketServer(t *testing.T) (url string, conns chan *gorilla.Conn) {
	t.Helper()

	upgrader := gorilla.Upgrader{}
	conns = make(chan *gorilla.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error("could not upgrade:", err)
			return
		}
		conns <- ws
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), conns
}

func sendEvent(t *testing.T, ws *gorilla.Conn, event string, payload interface{}) {
	t.Helper()
	env, err := websocket.NewEnvelope(event, payload)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(env))
}

func readReady(t *testing.T, ws *gorilla.Conn) string {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))

	var env websocket.Envelope
	require.NoError(t, ws.ReadJSON(&env))
	require.Equal(t, enotes.EventReady, env.Event)

	var username string
	require.NoError(t, json.Unmarshal(env.Data, &username))
	return username
}

func TestListener_HandshakeAndEventFeed(t *testing.T) {
	store, api := storeFixture(t, note("n1", 9000))
	store.SetSocketID("")
	url, conns := socketServer(t)

	listener := NewListener(store, log.New("test"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- listener.Listen(ctx, url) }()

	ws := <-conns

	// Handshake: the server announces the connection id, the client answers
	// with its username. A fresh session does not resync.
	sendEvent(t, ws, enotes.EventReady, "conn-a")
	assert.Equal(t, "alice", readReady(t, ws))
	assert.Equal(t, "conn-a", store.SocketID())
	assert.Empty(t, api.methods(), "the first handshake must not refresh")

	// Fan-out events land in the store.
	sendEvent(t, ws, enotes.EventCreate, note("n2", 9001))
	require.Eventually(t, func() bool { return store.Note("n2") != nil },
		time.Second, 10*time.Millisecond)

	cancel()
	require.Error(t, <-done)
}

func TestListener_SecondReadyResyncs(t *testing.T) {
	store, api := storeFixture(t, note("n1", 9000))
	store.SetSocketID("")
	url, conns := socketServer(t)

	listener := NewListener(store, log.New("test"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- listener.Listen(ctx, url) }()

	ws := <-conns
	sendEvent(t, ws, enotes.EventReady, "conn-a")
	readReady(t, ws)

	sendEvent(t, ws, enotes.EventCreate, note("n2", 9001))
	require.Eventually(t, func() bool { return store.Note("n2") != nil },
		time.Second, 10*time.Millisecond)

	// A second ready means the connection was replaced: anything fanned out
	// in between is gone, so the store pulls fresh state.
	sendEvent(t, ws, enotes.EventReady, "conn-b")
	readReady(t, ws)
	assert.Equal(t, "conn-b", store.SocketID())

	require.Eventually(t, func() bool {
		for _, method := range api.methods() {
			if method == "GetNotes" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond, "a reconnect handshake must refresh")

	// The refresh replaced local state with the server's, dropping the note
	// that only ever existed as a fan-out event.
	require.Eventually(t, func() bool { return store.Note("n2") == nil },
		time.Second, 10*time.Millisecond)
	assert.NotNil(t, store.Note("n1"))

	cancel()
	require.Error(t, <-done)
}

func TestListener_ServerCloseEndsListen(t *testing.T) {
	store, _ := storeFixture(t, note("n1", 9000))
	store.SetSocketID("")
	url, conns := socketServer(t)

	listener := NewListener(store, log.New("test"))
	done := make(chan error, 1)
	go func() { done <- listener.Listen(context.Background(), url) }()

	ws := <-conns
	sendEvent(t, ws, enotes.EventReady, "conn-a")
	readReady(t, ws)

	require.NoError(t, ws.Close())

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after the server closed the connection")
	}
}