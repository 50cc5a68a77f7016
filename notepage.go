package enotes

// NotePage groups notes into a named tab. OrderIndex is the page's position
// in the owner's ordered page list; it is repaired by a re-indexing pass
// after reorders and deletes.
type NotePage struct {
	ID       string `json:"id"`
	Username string `json:"username"`

	Name       string `json:"name"`
	OrderIndex int    `json:"orderIndex"`

	// Active is a per-session display flag, never persisted.
	Active bool `json:"-"`
}

// DefaultPageName names the page recreated when a user deletes their last one.
const DefaultPageName = "Notes"

type NotePageRepository interface {
	Get(id string) (*NotePage, error)
	List(username string) ([]*NotePage, error)
	Upsert(*NotePage) error
	Delete(id string) error
}
