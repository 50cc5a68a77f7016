package mock

import (
	"github.com/DBall8/enotes"
)

// NoteRepository is an in-memory enotes.NoteRepository for tests.
type NoteRepository struct {
	db map[string]*enotes.Note

	// FailNext makes the next mutating call fail with the given error.
	FailNext error
}

func (r *NoteRepository) init() {
	if r.db == nil {
		r.db = make(map[string]*enotes.Note)
	}
}

func (r *NoteRepository) fail() error {
	if err := r.FailNext; err != nil {
		r.FailNext = nil
		return err
	}
	return nil
}

func (r *NoteRepository) Get(id string) (*enotes.Note, error) {
	r.init()
	return r.db[id], nil
}

func (r *NoteRepository) List(username string) ([]*enotes.Note, error) {
	r.init()
	notes := make([]*enotes.Note, 0)
	for _, note := range r.db {
		if note.Username == username {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

func (r *NoteRepository) Upsert(note *enotes.Note) error {
	r.init()
	if err := r.fail(); err != nil {
		return err
	}
	n := *note
	r.db[note.ID] = &n
	return nil
}

func (r *NoteRepository) Delete(id string) error {
	r.init()
	if err := r.fail(); err != nil {
		return err
	}
	delete(r.db, id)
	return nil
}

func (r *NoteRepository) DeleteByPage(username, pageID string) (int, error) {
	r.init()
	if err := r.fail(); err != nil {
		return 0, err
	}
	deleted := 0
	for id, note := range r.db {
		if note.Username == username && note.PageID == pageID {
			delete(r.db, id)
			deleted++
		}
	}
	return deleted, nil
}

// NotePageRepository is an in-memory enotes.NotePageRepository for tests.
type NotePageRepository struct {
	db map[string]*enotes.NotePage

	FailNext error
}

func (r *NotePageRepository) init() {
	if r.db == nil {
		r.db = make(map[string]*enotes.NotePage)
	}
}

func (r *NotePageRepository) Get(id string) (*enotes.NotePage, error) {
	r.init()
	return r.db[id], nil
}

func (r *NotePageRepository) List(username string) ([]*enotes.NotePage, error) {
	r.init()
	pages := make([]*enotes.NotePage, 0)
	for _, page := range r.db {
		if page.Username == username {
			pages = append(pages, page)
		}
	}
	sortPages(pages)
	return pages, nil
}

func (r *NotePageRepository) Upsert(page *enotes.NotePage) error {
	r.init()
	if err := r.FailNext; err != nil {
		r.FailNext = nil
		return err
	}
	p := *page
	r.db[page.ID] = &p
	return nil
}

func (r *NotePageRepository) Delete(id string) error {
	r.init()
	delete(r.db, id)
	return nil
}

func sortPages(pages []*enotes.NotePage) {
	for i := 1; i < len(pages); i++ {
		for j := i; j > 0 && pages[j-1].OrderIndex > pages[j].OrderIndex; j-- {
			pages[j-1], pages[j] = pages[j], pages[j-1]
		}
	}
}

// UserRepository is an in-memory enotes.UserRepository for tests.
type UserRepository struct {
	db map[string]*enotes.User
}

func (r *UserRepository) Get(name string) (*enotes.User, error) {
	if r.db == nil {
		r.db = make(map[string]*enotes.User)
	}
	return r.db[name], nil
}

func (r *UserRepository) Upsert(user *enotes.User) error {
	if r.db == nil {
		r.db = make(map[string]*enotes.User)
	}
	u := *user
	r.db[user.Name] = &u
	return nil
}
