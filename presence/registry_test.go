package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DBall8/enotes/log"
	"github.com/DBall8/enotes/mock"
)

func TestRegistry_BroadcastExcept(t *testing.T) {
	registry := NewRegistry(log.New("test"))

	c1 := &mock.Conn{ConnID: "conn-1"}
	c2 := &mock.Conn{ConnID: "conn-2"}
	registry.Register(c1, "alice")
	registry.Register(c2, "alice")

	registry.BroadcastExcept("alice", "update", "payload", "conn-1")

	assert.Len(t, c1.Received(), 0, "origin should never receive its own echo")
	received := c2.Received()
	if assert.Len(t, received, 1, "sibling should receive exactly once") {
		assert.Equal(t, "update", received[0].Event)
		assert.Equal(t, "payload", received[0].Payload)
	}
}

func TestRegistry_BroadcastExcept_OtherUser(t *testing.T) {
	registry := NewRegistry(log.New("test"))

	c1 := &mock.Conn{ConnID: "conn-1"}
	c2 := &mock.Conn{ConnID: "conn-2"}
	registry.Register(c1, "alice")
	registry.Register(c2, "bob")

	registry.BroadcastExcept("alice", "create", "payload", "")

	assert.Len(t, c1.Received(), 1)
	assert.Len(t, c2.Received(), 0, "bob is not alice")
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry(log.New("test"))

	c1 := &mock.Conn{ConnID: "conn-1"}
	c2 := &mock.Conn{ConnID: "conn-2"}
	registry.Register(c1, "alice")
	registry.Register(c2, "alice")
	assert.Equal(t, 2, registry.Connections("alice"))

	registry.Unregister("conn-1")
	registry.BroadcastExcept("alice", "delete", "note-1", "")

	assert.Len(t, c1.Received(), 0, "unregistered connection must never be targeted")
	assert.Len(t, c2.Received(), 1)

	// Dropping the last connection drops the user entry entirely.
	registry.Unregister("conn-2")
	assert.Equal(t, 0, registry.Connections("alice"))

	// Unknown ids are a no-op.
	registry.Unregister("conn-2")
	registry.Unregister("never-seen")
}

func TestRegistry_ReregisterMovesConnection(t *testing.T) {
	registry := NewRegistry(log.New("test"))

	c := &mock.Conn{ConnID: "conn-1"}
	registry.Register(c, "alice")
	registry.Register(c, "bob")

	// The connection belongs to exactly one user at a time.
	assert.Equal(t, 0, registry.Connections("alice"))
	assert.Equal(t, 1, registry.Connections("bob"))

	registry.BroadcastExcept("alice", "update", "payload", "")
	assert.Len(t, c.Received(), 0, "the connection left alice when it became bob's")

	registry.Unregister("conn-1")
	assert.Equal(t, 0, registry.Connections("bob"))

	registry.BroadcastExcept("alice", "update", "payload", "")
	registry.BroadcastExcept("bob", "update", "payload", "")
	assert.Len(t, c.Received(), 0, "unregistered connection must never be targeted")
}

func TestRegistry_ReregisterSameUser(t *testing.T) {
	registry := NewRegistry(log.New("test"))

	c := &mock.Conn{ConnID: "conn-1"}
	registry.Register(c, "alice")
	registry.Register(c, "alice")

	assert.Equal(t, 1, registry.Connections("alice"))

	registry.Unregister("conn-1")
	assert.Equal(t, 0, registry.Connections("alice"))
}

func TestRegistry_StaleConnection(t *testing.T) {
	registry := NewRegistry(log.New("test"))

	stale := &mock.Conn{ConnID: "conn-1", Stale: true}
	live := &mock.Conn{ConnID: "conn-2"}
	registry.Register(stale, "alice")
	registry.Register(live, "alice")

	// A stale target is skipped, never an error for the broadcast.
	registry.BroadcastExcept("alice", "update", "payload", "")
	assert.Len(t, live.Received(), 1)
}
