package websocket

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/log"
	"github.com/DBall8/enotes/presence"
)

// Handler upgrades incoming requests and runs the presence handshake: the
// server announces the connection id with a ready event, the client answers
// with a ready event carrying its username, and from then on the connection
// is registered for fan-out until it drops.
type Handler struct {
	Registry *presence.Registry
	Logger   log.Logger

	upgrader websocket.Upgrader
}

func NewHandler(registry *presence.Registry, logger log.Logger) *Handler {
	return &Handler{
		Registry: registry,
		Logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Sessions are authenticated on the HTTP mutation path; the
			// socket only ever pushes data out.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Errorf("could not upgrade connection: %v", err)
		return
	}

	conn := newConn("conn-"+uuid.NewString(), ws)
	go h.serve(conn)
}

func (h *Handler) serve(conn *Conn) {
	defer func() {
		h.Registry.Unregister(conn.ID())
		conn.close()
	}()

	if err := conn.Emit(enotes.EventReady, conn.ID()); err != nil {
		h.Logger.Errorf("could not send ready to %s: %v", conn.ID(), err)
		return
	}

	for {
		var env Envelope
		if err := conn.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Logger.Errorf("connection %s dropped: %v", conn.ID(), err)
			}
			return
		}

		switch env.Event {
		case enotes.EventReady:
			var username string
			if err := json.Unmarshal(env.Data, &username); err != nil || username == "" {
				h.Logger.Errorf("invalid ready payload on %s", conn.ID())
				continue
			}
			h.Registry.Register(conn, username)
			h.Logger.Printf("%s is ready on %s", username, conn.ID())
		default:
			// Clients only ever send ready; anything else is ignored.
		}
	}
}
