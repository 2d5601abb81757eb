// Package memory provides thread-safe in-memory implementations of the
// store interfaces. Suitable for testing and single-process use.
package memory

import (
	"strconv"
	"sync"

	"github.com/Arnthorny/gatehouse/store"
)

// UserStore is a thread-safe in-memory store.UserStore.
type UserStore struct {
	mu     sync.RWMutex
	users  []*store.User
	nextID int
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{nextID: 1}
}

func cloneUser(u *store.User) *store.User {
	cp := *u
	return &cp
}

func (s *UserStore) AddUser(email, hashedPassword string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &store.User{
		ID:             strconv.Itoa(s.nextID),
		Email:          email,
		HashedPassword: hashedPassword,
	}
	s.nextID++
	s.users = append(s.users, u)
	return cloneUser(u), nil
}

func (s *UserStore) FindUser(by map[store.Field]string) (*store.User, error) {
	if err := store.ValidateUserFields(by); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if store.MatchUser(u, by) {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) UpdateUser(id string, set map[store.Field]string) error {
	if err := store.ValidateUserFields(set); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			store.AssignUser(u, set)
			return nil
		}
	}
	return store.ErrNotFound
}

// SessionStore is a thread-safe in-memory store.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*store.Session
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*store.Session)}
}

func cloneSession(s *store.Session) *store.Session {
	cp := *s
	return &cp
}

func (s *SessionStore) FindSessions(by map[store.Field]string) ([]*store.Session, error) {
	if err := store.ValidateSessionFields(by); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*store.Session
	for _, sess := range s.sessions {
		if store.MatchSession(sess, by) {
			out = append(out, cloneSession(sess))
		}
	}
	return out, nil
}

func (s *SessionStore) SaveSession(sess *store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *SessionStore) DeleteSession(sess *store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return store.ErrNotFound
	}
	delete(s.sessions, sess.ID)
	return nil
}
