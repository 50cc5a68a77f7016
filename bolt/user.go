package bolt

import (
	"encoding/json"

	"github.com/boltdb/bolt"

	"github.com/DBall8/enotes"
)

type UserStore struct {
	Driver *Driver
}

func (s *UserStore) Get(name string) (*enotes.User, error) {
	var user *enotes.User
	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(userBucket)

		data := bucket.Get([]byte(name))
		if data == nil {
			return nil
		}

		user = &enotes.User{}
		return json.Unmarshal(data, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserStore) Upsert(user *enotes.User) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(userBucket)

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(user.Name), data)
	})
}
