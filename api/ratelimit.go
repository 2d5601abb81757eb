package api

import (
	"sync"
	"time"
)

// loginRateLimiter tracks failed login attempts per account and
// enforces exponential backoff. Keys are email addresses; state lives
// only in memory and is garbage-collected after attemptExpiry.
type loginRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
}

type attemptRecord struct {
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

const (
	// maxFailures is the number of consecutive failures before lockout begins.
	maxFailures = 5
	// baseLockout is the initial lockout duration after maxFailures is reached.
	baseLockout = 1 * time.Minute
	// maxLockout caps the exponential backoff.
	maxLockout = 15 * time.Minute
	// attemptExpiry is how long after the last failure before the record
	// is garbage-collected.
	attemptExpiry = 1 * time.Hour
)

func newLoginRateLimiter() *loginRateLimiter {
	return &loginRateLimiter{
		attempts: make(map[string]*attemptRecord),
	}
}

// check returns true if the account is currently locked out, along with
// how long the caller should wait. A zero duration means the request
// may proceed.
func (rl *loginRateLimiter) check(key string) (blocked bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.attempts[key]
	if !ok {
		return false, 0
	}
	if time.Since(rec.lastFailure) > attemptExpiry {
		delete(rl.attempts, key)
		return false, 0
	}
	if time.Now().Before(rec.lockedUntil) {
		return true, time.Until(rec.lockedUntil)
	}
	return false, 0
}

// recordFailure notes a failed attempt and extends the lockout once the
// failure threshold is crossed. Each threshold multiple doubles the
// lockout, capped at maxLockout.
func (rl *loginRateLimiter) recordFailure(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.attempts[key]
	if !ok {
		rec = &attemptRecord{}
		rl.attempts[key] = rec
	}
	rec.failures++
	rec.lastFailure = time.Now()

	if rec.failures >= maxFailures {
		lockout := baseLockout << (rec.failures - maxFailures)
		if lockout > maxLockout || lockout <= 0 {
			lockout = maxLockout
		}
		rec.lockedUntil = time.Now().Add(lockout)
	}
}

// recordSuccess clears any failure state for the account.
func (rl *loginRateLimiter) recordSuccess(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}
