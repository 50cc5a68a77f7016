package bolt

import (
	"encoding/json"

	"github.com/boltdb/bolt"

	"github.com/DBall8/enotes"
)

// NoteStore stores and retrieves notes from a bolt database. Notes are keyed
// by their client-generated id; the owner travels inside the value so the
// mutation path can check ownership on notes it did not create.
type NoteStore struct {
	Driver *Driver
}

// Get retrieves the note defined by id. If no note can be found with the
// given id, Get returns nil.
func (s *NoteStore) Get(id string) (*enotes.Note, error) {
	var note *enotes.Note
	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(noteBucket)

		data := bucket.Get([]byte(id))
		if data == nil {
			return nil
		}

		note = &enotes.Note{}
		return json.Unmarshal(data, note)
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// List returns every note owned by username.
func (s *NoteStore) List(username string) ([]*enotes.Note, error) {
	notes := make([]*enotes.Note, 0)

	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(noteBucket)

		c := bucket.Cursor()
		for id, data := c.First(); id != nil; id, data = c.Next() {
			var note enotes.Note
			if err := json.Unmarshal(data, &note); err != nil {
				return err
			}
			if note.Username == username {
				notes = append(notes, &note)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return notes, nil
}

// Upsert inserts or updates a note, keyed by note.ID.
func (s *NoteStore) Upsert(note *enotes.Note) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(noteBucket)

		data, err := json.Marshal(note)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(note.ID), data)
	})
}

func (s *NoteStore) Delete(id string) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(noteBucket)
		return bucket.Delete([]byte(id))
	})
}

// DeleteByPage removes every note of username bound to pageID and returns
// how many were removed.
func (s *NoteStore) DeleteByPage(username, pageID string) (int, error) {
	deleted := 0
	err := s.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(noteBucket)

		var ids [][]byte
		c := bucket.Cursor()
		for id, data := c.First(); id != nil; id, data = c.Next() {
			var note enotes.Note
			if err := json.Unmarshal(data, &note); err != nil {
				return err
			}
			if note.Username == username && note.PageID == pageID {
				ids = append(ids, append([]byte(nil), id...))
			}
		}

		for _, id := range ids {
			if err := bucket.Delete(id); err != nil {
				return err
			}
		}
		deleted = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
