package presence

import (
	"sync"

	"github.com/DBall8/enotes/log"
)

// Conn is one live client connection the registry can push events to.
type Conn interface {
	ID() string
	Emit(event string, payload interface{}) error
}

// Registry maps a username to the set of connections that user currently has
// open. Multiple connections per user are the normal case (one per tab or
// device). A reverse index from connection id to username keeps unregister
// from scanning every user.
//
// The registry is process-local. It deliberately does not generalize to
// multiple server instances without an external shared registry.
type Registry struct {
	mu     sync.RWMutex
	logger log.Logger

	users map[string]map[string]Conn
	conns map[string]string
}

func NewRegistry(logger log.Logger) *Registry {
	return &Registry{
		logger: logger,
		users:  make(map[string]map[string]Conn),
		conns:  make(map[string]string),
	}
}

// Register adds conn to username's set, creating the set if this is the
// user's first connection. A connection belongs to exactly one user: a
// re-register under a different name detaches it from the previous one
// first.
func (r *Registry) Register(conn Conn, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[conn.ID()]; ok && prev != username {
		r.detach(prev, conn.ID())
	}

	set, ok := r.users[username]
	if !ok {
		set = make(map[string]Conn)
		r.users[username] = set
	}
	set[conn.ID()] = conn
	r.conns[conn.ID()] = username
}

// Unregister removes the connection from whichever user owns it. Removing
// the last connection of a user drops the user's entry entirely. Unknown ids
// are ignored.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(r.conns, connID)
	r.detach(username, connID)
}

func (r *Registry) detach(username, connID string) {
	set := r.users[username]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.users, username)
	}
}

// BroadcastExcept delivers event(payload) to every live connection of
// username other than exceptID. A send to a connection that has gone stale
// is logged and skipped, never surfaced to the caller.
func (r *Registry) BroadcastExcept(username, event string, payload interface{}, exceptID string) {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.users[username]))
	for id, conn := range r.users[username] {
		if id != exceptID {
			conns = append(conns, conn)
		}
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Emit(event, payload); err != nil {
			r.logger.Errorf("could not emit %s to %s: %v", event, conn.ID(), err)
		}
	}
}

// Connections returns how many connections username currently has. Mostly
// useful in tests and logs.
func (r *Registry) Connections(username string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[username])
}
