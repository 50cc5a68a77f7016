package bolt

import (
	"encoding/json"
	"sort"

	"github.com/boltdb/bolt"

	"github.com/DBall8/enotes"
)

// NotePageStore stores and retrieves note pages, keyed by page id.
type NotePageStore struct {
	Driver *Driver
}

func (s *NotePageStore) Get(id string) (*enotes.NotePage, error) {
	var page *enotes.NotePage
	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pageBucket)

		data := bucket.Get([]byte(id))
		if data == nil {
			return nil
		}

		page = &enotes.NotePage{}
		return json.Unmarshal(data, page)
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// List returns the user's pages ordered by OrderIndex.
func (s *NotePageStore) List(username string) ([]*enotes.NotePage, error) {
	pages := make([]*enotes.NotePage, 0)

	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pageBucket)

		c := bucket.Cursor()
		for id, data := c.First(); id != nil; id, data = c.Next() {
			var page enotes.NotePage
			if err := json.Unmarshal(data, &page); err != nil {
				return err
			}
			if page.Username == username {
				pages = append(pages, &page)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].OrderIndex < pages[j].OrderIndex })
	return pages, nil
}

func (s *NotePageStore) Upsert(page *enotes.NotePage) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pageBucket)

		data, err := json.Marshal(page)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(page.ID), data)
	})
}

func (s *NotePageStore) Delete(id string) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pageBucket)
		return bucket.Delete([]byte(id))
	})
}
