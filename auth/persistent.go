package auth

import (
	"time"

	"github.com/Arnthorny/gatehouse/internal/token"
	"github.com/Arnthorny/gatehouse/store"
)

// PersistentSource keeps session bindings in a durable store so they
// survive process restarts. Expiration semantics match ExpiringSource
// but are computed from the persisted creation time. Store failures on
// lookup map to absent, never to an error: authentication fails closed.
type PersistentSource struct {
	sessions store.SessionStore
	ttl      time.Duration
	now      func() time.Time
}

var _ SessionSource = (*PersistentSource)(nil)

// NewPersistentSource creates a durable session source with the given
// TTL. A TTL of 0 or less disables expiration.
func NewPersistentSource(sessions store.SessionStore, ttl time.Duration) *PersistentSource {
	return &PersistentSource{sessions: sessions, ttl: ttl, now: time.Now}
}

func (p *PersistentSource) Create(userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	id := token.New()
	// The store is the system of record; a failed save is not retried
	// here and the id is still handed out, matching the in-memory
	// contract where only an invalid user id fails creation.
	_ = p.sessions.SaveSession(&store.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: p.now(),
	})
	return id, true
}

func (p *PersistentSource) Lookup(sessionID string) (string, bool) {
	rec, ok := p.find(sessionID)
	if !ok {
		return "", false
	}
	if p.ttl <= 0 {
		return rec.UserID, true
	}
	if rec.CreatedAt.IsZero() {
		return "", false
	}
	if p.now().After(rec.CreatedAt.Add(p.ttl)) {
		return "", false
	}
	return rec.UserID, true
}

func (p *PersistentSource) Remove(sessionID string) bool {
	rec, ok := p.find(sessionID)
	if !ok {
		return false
	}
	return p.sessions.DeleteSession(rec) == nil
}

// find returns the first persisted record for the session id. Store
// errors and empty results both read as absent.
func (p *PersistentSource) find(sessionID string) (*store.Session, bool) {
	if sessionID == "" {
		return nil, false
	}
	recs, err := p.sessions.FindSessions(map[store.Field]string{store.FieldSessionID: sessionID})
	if err != nil || len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}
