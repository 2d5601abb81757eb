package auth

import (
	"strconv"
	"time"
)

// ExpiringSource decorates a Registry with a time-to-live policy without
// changing how bindings are stored. A TTL of 0 or less means sessions
// never expire. Expiration is a lazy check at lookup time; there is no
// background sweep.
type ExpiringSource struct {
	reg *Registry
	ttl time.Duration
	now func() time.Time
}

var _ SessionSource = (*ExpiringSource)(nil)

// NewExpiringSource wraps the registry with the given TTL.
func NewExpiringSource(reg *Registry, ttl time.Duration) *ExpiringSource {
	return &ExpiringSource{reg: reg, ttl: ttl, now: time.Now}
}

func (e *ExpiringSource) Create(userID string) (string, bool) {
	return e.reg.Create(userID)
}

// Lookup returns the bound user id unless the binding is missing, its
// creation time was never recorded, or the TTL has elapsed.
func (e *ExpiringSource) Lookup(sessionID string) (string, bool) {
	entry, ok := e.reg.entry(sessionID)
	if !ok {
		return "", false
	}
	if e.ttl <= 0 {
		return entry.userID, true
	}
	if entry.createdAt.IsZero() {
		return "", false
	}
	if e.now().After(entry.createdAt.Add(e.ttl)) {
		return "", false
	}
	return entry.userID, true
}

func (e *ExpiringSource) Remove(sessionID string) bool {
	return e.reg.Remove(sessionID)
}

// TTLFromSeconds parses a session duration given in whole seconds.
// Unparseable or negative values fall back to 0 (never expires) rather
// than failing startup.
func TTLFromSeconds(s string) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
