package enotes

// Limits enforced when validating incoming mutations. They mirror the widths
// of the columns the notes were historically stored in.
const (
	MaxTitleLength    = 100
	MaxContentLength  = 4096
	MaxPageNameLength = 100
)

// ColorScheme holds the two colors a note is drawn with: the body and the
// highlighted head bar shown when the note is selected.
type ColorScheme struct {
	Body string `json:"body"`
	Head string `json:"head"`
}

// Yellow is the scheme given to notes created without an explicit one.
var Yellow = ColorScheme{Body: "#ffef96", Head: "#ffe046"}

// Note is a single movable, resizable text note. IDs are generated by the
// client that creates the note and are opaque to the server.
type Note struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	PageID   string `json:"pageID"`

	Title   string `json:"title"`
	Content string `json:"content"`

	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	ZIndex int `json:"zIndex"`

	Font     string      `json:"font"`
	FontSize int         `json:"fontSize"`
	Colors   ColorScheme `json:"colors"`

	// Dirty marks unsynced local changes. It only ever matters inside a
	// client session and never goes over the wire.
	Dirty bool `json:"-"`
}

// NoteRepository stores notes keyed by their client-generated id. Get
// returns nil when the note does not exist, without an error: the mutation
// path needs to see a foreign owner's note to reject the request instead of
// silently skipping it.
type NoteRepository interface {
	Get(id string) (*Note, error)
	List(username string) ([]*Note, error)
	Upsert(*Note) error
	Delete(id string) error

	// DeleteByPage removes every note of username bound to pageID and
	// returns how many were removed.
	DeleteByPage(username, pageID string) (int, error)
}
