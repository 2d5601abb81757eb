package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/Arnthorny/gatehouse/internal/token"
	"github.com/Arnthorny/gatehouse/store"
)

// SessionSource is the creation/lookup/removal contract shared by the
// in-memory registry and the policy decorators that wrap it.
type SessionSource interface {
	// Create binds a new random session id to the user and returns it.
	// False when the user id is invalid.
	Create(userID string) (string, bool)
	// Lookup returns the user id bound to the session id, or false.
	Lookup(sessionID string) (string, bool)
	// Remove destroys the binding. False when it does not exist, so a
	// second removal of the same session is a non-error failure.
	Remove(sessionID string) bool
}

type sessionEntry struct {
	userID    string
	createdAt time.Time
}

// Registry is a mutex-protected in-memory table of session bindings.
// It records creation time alongside each binding but applies no expiry
// policy itself; see ExpiringSource.
type Registry struct {
	mu   sync.RWMutex
	data map[string]sessionEntry
	now  func() time.Time
}

var _ SessionSource = (*Registry)(nil)

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		data: make(map[string]sessionEntry),
		now:  time.Now,
	}
}

func (r *Registry) Create(userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	id := token.New()
	r.mu.Lock()
	r.data[id] = sessionEntry{userID: userID, createdAt: r.now()}
	r.mu.Unlock()
	return id, true
}

func (r *Registry) Lookup(sessionID string) (string, bool) {
	e, ok := r.entry(sessionID)
	if !ok {
		return "", false
	}
	return e.userID, true
}

// entry returns the raw binding, including its creation time.
func (r *Registry) entry(sessionID string) (sessionEntry, bool) {
	if sessionID == "" {
		return sessionEntry{}, false
	}
	r.mu.RLock()
	e, ok := r.data[sessionID]
	r.mu.RUnlock()
	return e, ok
}

func (r *Registry) Remove(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[sessionID]; !ok {
		return false
	}
	delete(r.data, sessionID)
	return true
}

// SessionStrategy authenticates requests by a session cookie bound to a
// user through a SessionSource.
type SessionStrategy struct {
	base
	sessions   SessionSource
	users      store.UserStore
	cookieName string
}

var _ Strategy = (*SessionStrategy)(nil)

// NewSessionStrategy creates a cookie-bound session strategy. The
// cookie name comes from configuration; the source decides the storage
// and expiry policy.
func NewSessionStrategy(sessions SessionSource, users store.UserStore, cookieName string) *SessionStrategy {
	return &SessionStrategy{sessions: sessions, users: users, cookieName: cookieName}
}

// Sessions exposes the underlying source so callers can create sessions
// at login with whatever policy this strategy was built with.
func (s *SessionStrategy) Sessions() SessionSource {
	return s.sessions
}

// sessionCookie returns the session cookie value, or "" when the
// request or cookie is missing.
func (s *SessionStrategy) sessionCookie(r *http.Request) string {
	if r == nil {
		return ""
	}
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// ResolveUser reads the session cookie, looks up the bound user id, and
// loads the full user record. Absent at any step yields absent.
func (s *SessionStrategy) ResolveUser(r *http.Request) (*store.User, bool) {
	uid, ok := s.sessions.Lookup(s.sessionCookie(r))
	if !ok {
		return nil, false
	}
	u, err := s.users.FindUser(map[store.Field]string{store.FieldID: uid})
	if err != nil {
		return nil, false
	}
	return u, true
}

// DestroySession removes the session bound to the request's cookie.
// False when there is no request, no cookie, or no binding. Removal
// goes straight to the source, so a binding the active policy no
// longer resolves is still evicted at logout.
func (s *SessionStrategy) DestroySession(r *http.Request) bool {
	id := s.sessionCookie(r)
	if id == "" {
		return false
	}
	return s.sessions.Remove(id)
}
