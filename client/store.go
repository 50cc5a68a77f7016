package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/log"
)

// api is the slice of API the store persists through.
type api interface {
	GetNotes(ctx context.Context) (*Response, error)
	CreateNote(ctx context.Context, note *enotes.Note, socketID string) (*Response, error)
	UpdateNote(ctx context.Context, note *enotes.Note, socketID string) (*Response, error)
	DeleteNote(ctx context.Context, id, socketID string) (*Response, error)
	CreatePage(ctx context.Context, page *enotes.NotePage, socketID string) (*Response, error)
	UpdatePage(ctx context.Context, page *enotes.NotePage, socketID string) (*Response, error)
	DeletePage(ctx context.Context, id, socketID string) (*Response, error)
}

// The stacking band notes live in. When bringing a note to the front would
// push the running maximum past the ceiling, the page is renumbered to a
// compact range starting back at the floor.
const (
	zIndexFloor   = 9000
	zIndexCeiling = 9999
)

// FlushInterval is how often dirty notes are swept to the server.
const FlushInterval = time.Second

// Defaults for a freshly synthesized blank note.
const (
	defaultNoteX    = 200
	defaultNoteY    = 200
	defaultNoteSize = 200
	defaultFont     = "Arial"
	defaultFontSize = 12
)

// Store holds the in-memory note and page collection of one session. Local
// edits apply optimistically and are swept to the server by a timer;
// structural changes (create, delete, page operations) persist immediately.
// Events fanned out from the user's other sessions merge in through
// OnRemoteEvent.
type Store struct {
	mu     sync.Mutex
	api    api
	logger log.Logger

	username   string
	socketID   string
	notes      map[string]*enotes.Note
	pages      []*enotes.NotePage
	activePage string
	engines    map[string]*UndoEngine

	stop chan struct{}
	wg   sync.WaitGroup

	// RevertOnFailure re-marks a note dirty when its flush fails, so the
	// next sweep retries it. Off by default: the historical behavior keeps
	// the optimistic state and only surfaces the error.
	RevertOnFailure bool

	// OnError is told about failed persistence calls. Optional.
	OnError func(error)

	// OnSessionExpired fires when the server declares the session dead.
	// The store has already discarded its state by then; the callback's
	// job is to force re-authentication.
	OnSessionExpired func()
}

func NewStore(api api, logger log.Logger) *Store {
	return &Store{
		api:     api,
		logger:  logger,
		notes:   make(map[string]*enotes.Note),
		engines: make(map[string]*UndoEngine),
	}
}

// Refresh replaces the whole local collection with server state. It is the
// only recovery mechanism for missed fan-out events: reconnects do not
// replay, they resync.
func (s *Store) Refresh(ctx context.Context) error {
	res, err := s.api.GetNotes(ctx)
	if err := s.check(res, err); err != nil {
		return err
	}

	s.mu.Lock()
	s.username = res.Username
	s.notes = make(map[string]*enotes.Note, len(res.Notes))
	for _, note := range res.Notes {
		s.notes[note.ID] = note
	}
	s.pages = res.Pages
	s.sortPagesLocked()

	active := s.activePage
	if s.pageLocked(active) == nil && len(s.pages) > 0 {
		active = s.pages[0].ID
	}
	s.mu.Unlock()

	if active != "" {
		return s.SelectPage(ctx, active)
	}
	return nil
}

// MutateLocal applies a patch to the in-memory note and marks it dirty for
// the next flush. It never blocks on network I/O.
func (s *Store) MutateLocal(id string, patch func(*enotes.Note)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return
	}
	patch(note)
	note.Dirty = true
}

// Start launches the flush loop. Stop cancels it; the loop must not outlive
// the session that owns the store. Starting an already running store is a
// no-op.
func (s *Store) Start(interval time.Duration) {
	if s.stop != nil {
		return
	}
	if interval <= 0 {
		interval = FlushInterval
	}

	s.stop = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Flush(context.Background())
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Store) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.stop = nil
}

// Flush sweeps every dirty note to the server in one pass. Notes are marked
// clean before their request goes out; a failure surfaces through OnError
// and, unless RevertOnFailure is set, the local state keeps the optimistic
// value.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	socketID := s.socketID
	pending := make([]*enotes.Note, 0)
	for _, note := range s.notes {
		if note.Dirty {
			note.Dirty = false
			copied := *note
			pending = append(pending, &copied)
		}
	}
	s.mu.Unlock()

	for _, note := range pending {
		res, err := s.api.UpdateNote(ctx, note, socketID)
		if err := s.check(res, err); err != nil {
			s.fail(fmt.Errorf("could not save note %s: %v", note.ID, err))
			if s.RevertOnFailure {
				s.MutateLocal(note.ID, func(*enotes.Note) {})
			}
		}
	}
}

// OnRemoteEvent merges a fan-out event from a sibling session into local
// state. Merged entities are never marked dirty, which is what stops the
// echo from bouncing back to the server.
func (s *Store) OnRemoteEvent(event string, data json.RawMessage) {
	switch event {
	case enotes.EventCreate:
		var note enotes.Note
		if err := json.Unmarshal(data, &note); err != nil {
			s.logger.Errorf("bad %s payload: %v", event, err)
			return
		}
		s.mu.Lock()
		if _, ok := s.notes[note.ID]; !ok {
			s.notes[note.ID] = &note
		}
		s.mu.Unlock()

	case enotes.EventUpdate:
		var note enotes.Note
		if err := json.Unmarshal(data, &note); err != nil {
			s.logger.Errorf("bad %s payload: %v", event, err)
			return
		}
		s.mu.Lock()
		// Updates to unknown ids are dropped: the note lost a race with a
		// delete and must not be resurrected.
		if existing, ok := s.notes[note.ID]; ok {
			dirty := existing.Dirty
			*existing = note
			existing.Dirty = dirty
		}
		s.mu.Unlock()

	case enotes.EventDelete:
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			s.logger.Errorf("bad %s payload: %v", event, err)
			return
		}
		s.mu.Lock()
		delete(s.notes, id)
		delete(s.engines, id)
		s.mu.Unlock()

	case enotes.EventCreatePage:
		var page enotes.NotePage
		if err := json.Unmarshal(data, &page); err != nil {
			s.logger.Errorf("bad %s payload: %v", event, err)
			return
		}
		s.mu.Lock()
		if s.pageLocked(page.ID) == nil {
			s.pages = append(s.pages, &page)
			s.sortPagesLocked()
		}
		// A remote deletepage can leave no selection; the next page to
		// arrive becomes it. The session that caused the recreation
		// synthesizes the blank note, so none is created here.
		if s.activePage == "" {
			s.activePage = page.ID
			for _, p := range s.pages {
				p.Active = p.ID == page.ID
			}
		}
		s.mu.Unlock()

	case enotes.EventUpdatePage:
		var page enotes.NotePage
		if err := json.Unmarshal(data, &page); err != nil {
			s.logger.Errorf("bad %s payload: %v", event, err)
			return
		}
		s.mu.Lock()
		if existing := s.pageLocked(page.ID); existing != nil {
			active := existing.Active
			*existing = page
			existing.Active = active
			s.sortPagesLocked()
		}
		s.mu.Unlock()

	case enotes.EventDeletePage:
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			s.logger.Errorf("bad %s payload: %v", event, err)
			return
		}
		s.mu.Lock()
		s.removePageLocked(id)
		var next string
		if s.activePage == id {
			s.activePage = ""
			if len(s.pages) > 0 {
				next = s.pages[0].ID
			}
		}
		s.mu.Unlock()

		if next != "" {
			if err := s.SelectPage(context.Background(), next); err != nil {
				s.fail(err)
			}
		}

	default:
		s.logger.Errorf("unknown event %q", event)
	}
}

// SelectPage switches the active page. A page whose visible note set is
// empty gets exactly one fresh blank note, persisted right away.
func (s *Store) SelectPage(ctx context.Context, pageID string) error {
	s.mu.Lock()
	if s.pageLocked(pageID) == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown page %s", pageID)
	}

	s.activePage = pageID
	for _, page := range s.pages {
		page.Active = page.ID == pageID
	}

	empty := true
	for _, note := range s.notes {
		if note.PageID == pageID {
			empty = false
			break
		}
	}
	s.mu.Unlock()

	if !empty {
		return nil
	}
	_, err := s.AddNote(ctx, defaultNoteX, defaultNoteY)
	return err
}

// AddNote creates a blank note on the active page and persists it
// immediately: creation is structural and does not wait for the timer.
func (s *Store) AddNote(ctx context.Context, x, y int) (*enotes.Note, error) {
	s.mu.Lock()
	if s.activePage == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("no active page")
	}
	if y < 10 {
		y = 10
	}

	note := &enotes.Note{
		ID:       "note-" + uuid.NewString(),
		Username: s.username,
		PageID:   s.activePage,
		X:        x,
		Y:        y,
		Width:    defaultNoteSize,
		Height:   defaultNoteSize,
		ZIndex:   s.maxZIndexLocked(s.activePage) + 1,
		Font:     defaultFont,
		FontSize: defaultFontSize,
		Colors:   enotes.Yellow,
	}
	s.notes[note.ID] = note
	copied := *note
	socketID := s.socketID
	s.mu.Unlock()

	res, err := s.api.CreateNote(ctx, &copied, socketID)
	if err := s.check(res, err); err != nil {
		s.fail(fmt.Errorf("could not create note: %v", err))
		return note, err
	}
	return note, nil
}

// DeleteNote removes the note locally and persists the removal immediately.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.notes, id)
	delete(s.engines, id)
	socketID := s.socketID
	s.mu.Unlock()

	res, err := s.api.DeleteNote(ctx, id, socketID)
	if err := s.check(res, err); err != nil {
		s.fail(fmt.Errorf("could not delete note %s: %v", id, err))
		return err
	}
	return nil
}

// AddPage appends a new page after the existing ones and persists it.
func (s *Store) AddPage(ctx context.Context, name string) (*enotes.NotePage, error) {
	s.mu.Lock()
	page := &enotes.NotePage{
		ID:         "page-" + uuid.NewString(),
		Username:   s.username,
		Name:       name,
		OrderIndex: len(s.pages),
	}
	s.pages = append(s.pages, page)
	copied := *page
	socketID := s.socketID
	s.mu.Unlock()

	res, err := s.api.CreatePage(ctx, &copied, socketID)
	if err := s.check(res, err); err != nil {
		s.fail(fmt.Errorf("could not create page: %v", err))
		return page, err
	}
	return page, nil
}

// RenamePage persists a page rename immediately.
func (s *Store) RenamePage(ctx context.Context, id, name string) error {
	s.mu.Lock()
	page := s.pageLocked(id)
	if page == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown page %s", id)
	}
	page.Name = name
	copied := *page
	socketID := s.socketID
	s.mu.Unlock()

	res, err := s.api.UpdatePage(ctx, &copied, socketID)
	if err := s.check(res, err); err != nil {
		s.fail(fmt.Errorf("could not rename page %s: %v", id, err))
		return err
	}
	return nil
}

// SwapPagePositions exchanges the order of the pages at positions i and j,
// persisting both. Used by tab drag reordering.
func (s *Store) SwapPagePositions(ctx context.Context, i, j int) error {
	s.mu.Lock()
	if i < 0 || j < 0 || i >= len(s.pages) || j >= len(s.pages) || i == j {
		s.mu.Unlock()
		return nil
	}
	s.pages[i].OrderIndex, s.pages[j].OrderIndex = j, i
	s.pages[i], s.pages[j] = s.pages[j], s.pages[i]
	first, second := *s.pages[i], *s.pages[j]
	socketID := s.socketID
	s.mu.Unlock()

	for _, page := range []enotes.NotePage{first, second} {
		page := page
		res, err := s.api.UpdatePage(ctx, &page, socketID)
		if err := s.check(res, err); err != nil {
			s.fail(fmt.Errorf("could not reorder page %s: %v", page.ID, err))
			return err
		}
	}
	return nil
}

// DeletePage drops a page and every note on it, then persists the delete.
// When the server recreated a default page because this was the last one,
// the ack carries it and it is merged in.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	s.mu.Lock()
	s.removePageLocked(id)
	wasActive := s.activePage == id
	if wasActive {
		s.activePage = ""
	}
	socketID := s.socketID
	s.mu.Unlock()

	res, err := s.api.DeletePage(ctx, id, socketID)
	if err := s.check(res, err); err != nil {
		s.fail(fmt.Errorf("could not delete page %s: %v", id, err))
		return err
	}

	s.mu.Lock()
	if res.RecreatedPage != nil && s.pageLocked(res.RecreatedPage.ID) == nil {
		s.pages = append(s.pages, res.RecreatedPage)
		s.sortPagesLocked()
	}
	var next string
	if wasActive && len(s.pages) > 0 {
		next = s.pages[0].ID
	}
	s.mu.Unlock()

	if next != "" {
		return s.SelectPage(ctx, next)
	}
	return nil
}

// BringToFront raises a note above the others on its page. Continuous like
// a drag, so the new stacking order rides the next timer flush.
func (s *Store) BringToFront(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return
	}

	z := s.maxZIndexLocked(note.PageID) + 1
	if z > zIndexCeiling {
		z = s.renumberPageLocked(note.PageID) + 1
	}
	note.ZIndex = z
	note.Dirty = true
}

// TrackEdit records the pre-edit value of a note field for undo.
func (s *Store) TrackEdit(noteID string, field Field, previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[noteID]; !ok {
		return
	}
	s.engineLocked(noteID).Track(field, previous)
}

// Undo reverts the last edit burst on the note. Returns false when the
// history is exhausted.
func (s *Store) Undo(noteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[noteID]
	if !ok {
		return false
	}

	entry, ok := s.engineLocked(noteID).Undo(func(f Field) string { return fieldValue(note, f) })
	if !ok {
		return false
	}
	applyField(note, entry.Field, entry.Previous)
	note.Dirty = true
	return true
}

// Redo re-applies the last undone edit. Returns false when a newer edit has
// invalidated the redo history.
func (s *Store) Redo(noteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[noteID]
	if !ok {
		return false
	}

	entry, ok := s.engineLocked(noteID).Redo(func(f Field) string { return fieldValue(note, f) })
	if !ok {
		return false
	}
	applyField(note, entry.Field, entry.Previous)
	note.Dirty = true
	return true
}

// Username returns the identity the server reported on the last refresh.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// SocketID returns the id of this session's live connection, or "" before
// the handshake.
func (s *Store) SocketID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.socketID
}

// SetSocketID records the connection id the server handed out.
func (s *Store) SetSocketID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.socketID = id
}

// Notes returns the notes visible on the active page.
func (s *Store) Notes() []*enotes.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := make([]*enotes.Note, 0)
	for _, note := range s.notes {
		if note.PageID == s.activePage {
			visible = append(visible, note)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].ZIndex < visible[j].ZIndex })
	return visible
}

// Pages returns the pages in tab order.
func (s *Store) Pages() []*enotes.NotePage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*enotes.NotePage(nil), s.pages...)
}

// Note returns the note with the given id, or nil.
func (s *Store) Note(id string) *enotes.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes[id]
}

// ActivePage returns the id of the currently selected page.
func (s *Store) ActivePage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePage
}

// ------------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------------

var errSessionExpired = fmt.Errorf("session expired")

// check folds a response and its transport error into one verdict, handling
// session expiry as the hard signal it is: local state is abandoned and the
// re-authentication callback fires.
func (s *Store) check(res *Response, err error) error {
	if err != nil {
		return err
	}
	if res.SessionExpired {
		s.expire()
		return errSessionExpired
	}
	if !res.Successful {
		if res.Message != "" {
			return fmt.Errorf("%s", res.Message)
		}
		return fmt.Errorf("request failed")
	}
	return nil
}

func (s *Store) expire() {
	s.mu.Lock()
	s.notes = make(map[string]*enotes.Note)
	s.pages = nil
	s.engines = make(map[string]*UndoEngine)
	s.activePage = ""
	s.username = ""
	callback := s.OnSessionExpired
	s.mu.Unlock()

	if callback != nil {
		callback()
	}
}

func (s *Store) fail(err error) {
	s.logger.Error(err)
	if s.OnError != nil {
		s.OnError(err)
	}
}

func (s *Store) pageLocked(id string) *enotes.NotePage {
	for _, page := range s.pages {
		if page.ID == id {
			return page
		}
	}
	return nil
}

func (s *Store) removePageLocked(id string) {
	for i, page := range s.pages {
		if page.ID == id {
			s.pages = append(s.pages[:i], s.pages[i+1:]...)
			break
		}
	}
	for noteID, note := range s.notes {
		if note.PageID == id {
			delete(s.notes, noteID)
			delete(s.engines, noteID)
		}
	}
	for i, page := range s.pages {
		page.OrderIndex = i
	}
}

func (s *Store) sortPagesLocked() {
	sort.Slice(s.pages, func(i, j int) bool { return s.pages[i].OrderIndex < s.pages[j].OrderIndex })
}

func (s *Store) engineLocked(noteID string) *UndoEngine {
	engine, ok := s.engines[noteID]
	if !ok {
		engine = NewUndoEngine()
		s.engines[noteID] = engine
	}
	return engine
}

func (s *Store) maxZIndexLocked(pageID string) int {
	max := zIndexFloor
	for _, note := range s.notes {
		if note.PageID == pageID && note.ZIndex > max {
			max = note.ZIndex
		}
	}
	return max
}

// renumberPageLocked compacts the page's notes back into the band, keeping
// their relative order, and returns the new maximum.
func (s *Store) renumberPageLocked(pageID string) int {
	onPage := make([]*enotes.Note, 0)
	for _, note := range s.notes {
		if note.PageID == pageID {
			onPage = append(onPage, note)
		}
	}
	sort.Slice(onPage, func(i, j int) bool { return onPage[i].ZIndex < onPage[j].ZIndex })

	for i, note := range onPage {
		z := zIndexFloor + i
		if note.ZIndex != z {
			note.ZIndex = z
			note.Dirty = true
		}
	}
	return zIndexFloor + len(onPage) - 1
}

func fieldValue(note *enotes.Note, field Field) string {
	if field == FieldTitle {
		return note.Title
	}
	return note.Content
}

func applyField(note *enotes.Note, field Field, value string) {
	if field == FieldTitle {
		note.Title = value
	} else {
		note.Content = value
	}
}
