// Package bbolt provides BBolt-backed implementations of the store
// interfaces so users and sessions survive process restarts.
package bbolt

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/Arnthorny/gatehouse/store"
)

var (
	usersBucket    = []byte("users")
	sessionsBucket = []byte("sessions")
)

// Store implements store.UserStore and store.SessionStore backed by a
// single BBolt database.
type Store struct {
	db *bbolt.DB
}

var (
	_ store.UserStore    = (*Store)(nil)
	_ store.SessionStore = (*Store)(nil)
)

// NewStore returns a Store backed by the given BBolt database.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{usersBucket, sessionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromFile opens a BBolt database at the given path and returns
// a new Store.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db)
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) AddUser(email, hashedPassword string) (*store.User, error) {
	var u store.User
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(usersBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		u = store.User{
			ID:             strconv.FormatUint(seq, 10),
			Email:          email,
			HashedPassword: hashedPassword,
		}
		data, err := json.Marshal(&u)
		if err != nil {
			return err
		}
		return b.Put([]byte(u.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("adding user: %w", err)
	}
	return &u, nil
}

func (s *Store) FindUser(by map[store.Field]string) (*store.User, error) {
	if err := store.ValidateUserFields(by); err != nil {
		return nil, err
	}
	var found *store.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(usersBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var u store.User
			if err := json.Unmarshal(v, &u); err != nil {
				return err
			}
			if store.MatchUser(&u, by) {
				found = &u
				return nil
			}
		}
		return store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Store) UpdateUser(id string, set map[store.Field]string) error {
	if err := store.ValidateUserFields(set); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(usersBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return store.ErrNotFound
		}
		var u store.User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		store.AssignUser(&u, set)
		updated, err := json.Marshal(&u)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
}

func (s *Store) FindSessions(by map[store.Field]string) ([]*store.Session, error) {
	if err := store.ValidateSessionFields(by); err != nil {
		return nil, err
	}
	var out []*store.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(sessionsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var sess store.Session
			if err := json.Unmarshal(v, &sess); err != nil {
				return err
			}
			if store.MatchSession(&sess, by) {
				out = append(out, &sess)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SaveSession(sess *store.Session) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		return tx.Bucket(sessionsBucket).Put([]byte(sess.ID), data)
	})
}

func (s *Store) DeleteSession(sess *store.Session) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b.Get([]byte(sess.ID)) == nil {
			return store.ErrNotFound
		}
		return b.Delete([]byte(sess.ID))
	})
}
