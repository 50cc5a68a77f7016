package notes

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/errors"
	"github.com/DBall8/enotes/log"
)

// Service routes note and page mutations: it validates them, persists them,
// and fans the result out to the user's other live connections. The origin
// connection never receives its own echo, and a broadcast failure never
// fails the originating request.
//
// A single mutex serializes all mutations. That mutex is the serialization
// point of the whole system; beyond it the model is last-write-wins at row
// granularity, with no version or conflict check before an update. This is
// the documented consistency model, not an oversight.
type Service struct {
	mu sync.Mutex

	notes       enotes.NoteRepository
	pages       enotes.NotePageRepository
	broadcaster enotes.Broadcaster
	logger      log.Logger
}

func NewService(
	notes enotes.NoteRepository,
	pages enotes.NotePageRepository,
	broadcaster enotes.Broadcaster,
	logger log.Logger,
) *Service {
	return &Service{
		notes:       notes,
		pages:       pages,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// List returns every note and page of username, in page order. A user seen
// for the first time gets a default page created on the spot.
func (s *Service) List(username string) ([]*enotes.Note, []*enotes.NotePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages, err := s.pages.List(username)
	if err != nil {
		return nil, nil, errors.New("could not list pages", errors.WithCause(err))
	}

	if len(pages) == 0 {
		page := defaultPage(username)
		if err := s.pages.Upsert(page); err != nil {
			return nil, nil, errors.New("could not create default page", errors.WithCause(err))
		}
		pages = []*enotes.NotePage{page}
	}

	ns, err := s.notes.List(username)
	if err != nil {
		return nil, nil, errors.New("could not list notes", errors.WithCause(err))
	}

	return ns, pages, nil
}

// CreateNote validates and persists a new note, then broadcasts a create
// event to username's other connections.
func (s *Service) CreateNote(username, originConnID string, note *enotes.Note) (*enotes.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note.Username = username
	if err := s.validateNote(note); err != nil {
		return nil, err
	}

	existing, err := s.notes.Get(note.ID)
	if err != nil {
		return nil, errors.New("could not read note", errors.WithCause(err))
	} else if existing != nil {
		return nil, errors.New("a note with this id already exists", errors.BadRequest())
	}

	if err := s.notes.Upsert(note); err != nil {
		return nil, errors.New("could not save note", errors.WithCause(err))
	}

	s.broadcaster.BroadcastExcept(username, enotes.EventCreate, note, originConnID)
	return note, nil
}

// UpdateNote overwrites the whole stored row with the incoming payload.
// Updating a note that no longer exists is a successful no-op: the note lost
// a race against a delete and must not be resurrected.
func (s *Service) UpdateNote(username, originConnID string, note *enotes.Note) (*enotes.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note.Username = username
	if err := s.validateNote(note); err != nil {
		return nil, err
	}

	existing, err := s.notes.Get(note.ID)
	if err != nil {
		return nil, errors.New("could not read note", errors.WithCause(err))
	}
	if existing == nil {
		return note, nil
	}
	if existing.Username != username {
		return nil, errors.New("note belongs to another user", errors.Forbidden())
	}

	if err := s.notes.Upsert(note); err != nil {
		return nil, errors.New("could not update note", errors.WithCause(err))
	}

	s.broadcaster.BroadcastExcept(username, enotes.EventUpdate, note, originConnID)
	return note, nil
}

// DeleteNote removes a note and broadcasts its id. Deleting an unknown id is
// a successful no-op.
func (s *Service) DeleteNote(username, originConnID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		return errors.New("missing note id", errors.BadRequest())
	}

	existing, err := s.notes.Get(id)
	if err != nil {
		return errors.New("could not read note", errors.WithCause(err))
	}
	if existing != nil {
		if existing.Username != username {
			return errors.New("note belongs to another user", errors.Forbidden())
		}
		if err := s.notes.Delete(id); err != nil {
			return errors.New("could not delete note", errors.WithCause(err))
		}
	}

	s.broadcaster.BroadcastExcept(username, enotes.EventDelete, id, originConnID)
	return nil
}

// CreatePage validates and persists a new page, then broadcasts it.
func (s *Service) CreatePage(username, originConnID string, page *enotes.NotePage) (*enotes.NotePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page.Username = username
	if err := s.validatePage(page); err != nil {
		return nil, err
	}

	existing, err := s.pages.Get(page.ID)
	if err != nil {
		return nil, errors.New("could not read page", errors.WithCause(err))
	} else if existing != nil {
		return nil, errors.New("a page with this id already exists", errors.BadRequest())
	}

	if err := s.pages.Upsert(page); err != nil {
		return nil, errors.New("could not save page", errors.WithCause(err))
	}

	s.broadcaster.BroadcastExcept(username, enotes.EventCreatePage, page, originConnID)
	return page, nil
}

// UpdatePage persists a rename or reorder of a page.
func (s *Service) UpdatePage(username, originConnID string, page *enotes.NotePage) (*enotes.NotePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page.Username = username
	if err := s.validatePage(page); err != nil {
		return nil, err
	}

	existing, err := s.pages.Get(page.ID)
	if err != nil {
		return nil, errors.New("could not read page", errors.WithCause(err))
	}
	if existing == nil {
		return page, nil
	}
	if existing.Username != username {
		return nil, errors.New("page belongs to another user", errors.Forbidden())
	}

	if err := s.pages.Upsert(page); err != nil {
		return nil, errors.New("could not update page", errors.WithCause(err))
	}

	s.broadcaster.BroadcastExcept(username, enotes.EventUpdatePage, page, originConnID)
	return page, nil
}

// DeletePage removes a page and every note on it, re-indexes the remaining
// pages so their OrderIndex is contiguous again, and recreates a default
// page when the user just deleted their last one. The recreated page, if
// any, is returned so the origin learns about it from the ack while the
// siblings learn from a createpage event.
func (s *Service) DeletePage(username, originConnID, id string) (*enotes.NotePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		return nil, errors.New("missing page id", errors.BadRequest())
	}

	existing, err := s.pages.Get(id)
	if err != nil {
		return nil, errors.New("could not read page", errors.WithCause(err))
	}
	if existing != nil {
		if existing.Username != username {
			return nil, errors.New("page belongs to another user", errors.Forbidden())
		}

		if _, err := s.notes.DeleteByPage(username, id); err != nil {
			return nil, errors.New("could not delete the page's notes", errors.WithCause(err))
		}
		if err := s.pages.Delete(id); err != nil {
			return nil, errors.New("could not delete page", errors.WithCause(err))
		}
	}

	s.broadcaster.BroadcastExcept(username, enotes.EventDeletePage, id, originConnID)

	remaining, err := s.pages.List(username)
	if err != nil {
		return nil, errors.New("could not list pages", errors.WithCause(err))
	}

	for i, page := range remaining {
		if page.OrderIndex != i {
			page.OrderIndex = i
			if err := s.pages.Upsert(page); err != nil {
				return nil, errors.New("could not re-index pages", errors.WithCause(err))
			}
			s.broadcaster.BroadcastExcept(username, enotes.EventUpdatePage, page, originConnID)
		}
	}

	if len(remaining) > 0 {
		return nil, nil
	}

	page := defaultPage(username)
	if err := s.pages.Upsert(page); err != nil {
		return nil, errors.New("could not recreate default page", errors.WithCause(err))
	}
	s.broadcaster.BroadcastExcept(username, enotes.EventCreatePage, page, originConnID)
	return page, nil
}

func (s *Service) validateNote(note *enotes.Note) error {
	if note.ID == "" {
		return errors.New("missing note id", errors.BadRequest())
	}
	if note.PageID == "" {
		return errors.New("missing page id", errors.BadRequest())
	}
	if len(note.Title) > enotes.MaxTitleLength {
		return errors.New("title too long", errors.BadRequest())
	}
	if len(note.Content) > enotes.MaxContentLength {
		return errors.New("content too long", errors.BadRequest())
	}

	page, err := s.pages.Get(note.PageID)
	if err != nil {
		return errors.New("could not read page", errors.WithCause(err))
	}
	if page == nil {
		return errors.New("page does not exist", errors.BadRequest())
	}
	if page.Username != note.Username {
		return errors.New("page belongs to another user", errors.Forbidden())
	}
	return nil
}

func (s *Service) validatePage(page *enotes.NotePage) error {
	if page.ID == "" {
		return errors.New("missing page id", errors.BadRequest())
	}
	if len(page.Name) > enotes.MaxPageNameLength {
		return errors.New("page name too long", errors.BadRequest())
	}
	if strings.ContainsRune(page.Name, '\n') {
		return errors.New("page name cannot contain newlines", errors.BadRequest())
	}
	return nil
}

func defaultPage(username string) *enotes.NotePage {
	return &enotes.NotePage{
		ID:       "page-" + uuid.NewString(),
		Username: username,
		Name:     enotes.DefaultPageName,
	}
}
