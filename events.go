package enotes

// Socket event names shared by the server fan-out and the client listener.
const (
	EventReady      = "ready"
	EventCreate     = "create"
	EventUpdate     = "update"
	EventDelete     = "delete"
	EventCreatePage = "createpage"
	EventUpdatePage = "updatepage"
	EventDeletePage = "deletepage"
)

// Broadcaster pushes an event to every live connection of a user except the
// one the mutation came from. Implementations never fail a broadcast because
// a single target went stale.
type Broadcaster interface {
	BroadcastExcept(username, event string, payload interface{}, exceptID string)
}
