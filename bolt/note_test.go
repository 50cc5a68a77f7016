package bolt

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	"github.com/DBall8/enotes"
)

func createDriver(t *testing.T) (*Driver, func()) {
	tmpFile, err := ioutil.TempFile("", "")
	if err != nil {
		t.Fatal("could not create tmp file:", err)
	}

	filename := tmpFile.Name()
	driver := &Driver{}
	if err := driver.Open(filename); err != nil {
		os.Remove(filename)
		t.Fatalf("could not open bolt on file %s: %v", filename, err)
	}

	return driver, func() {
		driver.Close()
		os.Remove(filename)
	}
}

func TestNoteStore_Upsert_Get(t *testing.T) {
	driver, f := createDriver(t)
	defer f()
	store := &NoteStore{Driver: driver}

	note := enotes.Note{
		ID:       "note-1",
		Username: "alice",
		PageID:   "page-1",
		Content:  "buy milk",
		X:        100, Y: 120, Width: 200, Height: 200,
		ZIndex: 9000, Font: "Arial", FontSize: 12,
		Colors: enotes.Yellow,
	}
	if err := store.Upsert(&note); err != nil {
		t.Fatal("error inserting:", err)
	}

	retrieved, err := store.Get("note-1")
	if err != nil {
		t.Fatal("error getting:", err)
	} else if retrieved == nil {
		t.Fatal("note not found after insert")
	} else if !reflect.DeepEqual(*retrieved, note) {
		t.Fatalf("incorrect note retrieved: expected %+v got %+v", note, *retrieved)
	}

	// Unknown id comes back empty, not as an error.
	retrieved, err = store.Get("note-2")
	if err != nil {
		t.Fatal("error getting:", err)
	} else if retrieved != nil {
		t.Fatalf("expected nil, got %+v", *retrieved)
	}
}

func TestNoteStore_Update(t *testing.T) {
	driver, f := createDriver(t)
	defer f()
	store := &NoteStore{Driver: driver}

	note := enotes.Note{ID: "note-1", Username: "alice", PageID: "page-1", Content: "v1"}
	if err := store.Upsert(&note); err != nil {
		t.Fatal("error inserting:", err)
	}

	note.Content = "v2"
	note.X = 42
	if err := store.Upsert(&note); err != nil {
		t.Fatal("error updating:", err)
	}

	retrieved, err := store.Get("note-1")
	if err != nil {
		t.Fatal("error getting:", err)
	} else if !reflect.DeepEqual(*retrieved, note) {
		t.Fatalf("incorrect note retrieved: expected %+v got %+v", note, *retrieved)
	}
}

func TestNoteStore_List(t *testing.T) {
	driver, f := createDriver(t)
	defer f()
	store := &NoteStore{Driver: driver}

	for _, note := range []enotes.Note{
		{ID: "note-1", Username: "alice", PageID: "page-1"},
		{ID: "note-2", Username: "alice", PageID: "page-2"},
		{ID: "note-3", Username: "bob", PageID: "page-9"},
	} {
		note := note
		if err := store.Upsert(&note); err != nil {
			t.Fatal("error inserting:", err)
		}
	}

	notes, err := store.List("alice")
	if err != nil {
		t.Fatal("error listing:", err)
	} else if len(notes) != 2 {
		t.Fatalf("incorrect number of notes: expected 2 got %d", len(notes))
	}

	notes, err = store.List("nobody")
	if err != nil {
		t.Fatal("error listing:", err)
	} else if len(notes) != 0 {
		t.Fatalf("incorrect number of notes: expected 0 got %d", len(notes))
	}
}

func TestNoteStore_Delete(t *testing.T) {
	driver, f := createDriver(t)
	defer f()
	store := &NoteStore{Driver: driver}

	note := enotes.Note{ID: "note-1", Username: "alice", PageID: "page-1"}
	if err := store.Upsert(&note); err != nil {
		t.Fatal("error inserting:", err)
	}

	if err := store.Delete("note-1"); err != nil {
		t.Fatal("error deleting:", err)
	}

	retrieved, err := store.Get("note-1")
	if err != nil {
		t.Fatal("error getting:", err)
	} else if retrieved != nil {
		t.Fatal("note still present after delete")
	}

	// Deleting twice is fine.
	if err := store.Delete("note-1"); err != nil {
		t.Fatal("error deleting twice:", err)
	}
}

func TestNoteStore_DeleteByPage(t *testing.T) {
	driver, f := createDriver(t)
	defer f()
	store := &NoteStore{Driver: driver}

	for _, note := range []enotes.Note{
		{ID: "note-1", Username: "alice", PageID: "page-1"},
		{ID: "note-2", Username: "alice", PageID: "page-1"},
		{ID: "note-3", Username: "alice", PageID: "page-2"},
		{ID: "note-4", Username: "bob", PageID: "page-1"},
	} {
		note := note
		if err := store.Upsert(&note); err != nil {
			t.Fatal("error inserting:", err)
		}
	}

	deleted, err := store.DeleteByPage("alice", "page-1")
	if err != nil {
		t.Fatal("error deleting by page:", err)
	} else if deleted != 2 {
		t.Fatalf("incorrect number of notes deleted: expected 2 got %d", deleted)
	}

	notes, err := store.List("alice")
	if err != nil {
		t.Fatal("error listing:", err)
	} else if len(notes) != 1 || notes[0].ID != "note-3" {
		t.Fatalf("incorrect notes remaining: %+v", notes)
	}

	// bob's note on a page with the same id is untouched.
	notes, err = store.List("bob")
	if err != nil {
		t.Fatal("error listing:", err)
	} else if len(notes) != 1 {
		t.Fatalf("incorrect notes remaining for bob: %+v", notes)
	}
}
