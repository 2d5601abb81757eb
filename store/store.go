// Package store defines the user and session records and the durable
// stores the authentication core depends on.
package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no record matched the given predicate.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownField indicates a predicate or assignment named a field
	// that is not part of the record.
	ErrUnknownField = errors.New("unknown field")
)

// Field names a queryable or assignable record attribute.
type Field string

const (
	FieldID             Field = "id"
	FieldEmail          Field = "email"
	FieldHashedPassword Field = "hashed_password"
	FieldSessionToken   Field = "session_token"
	FieldResetToken     Field = "reset_token"

	FieldSessionID Field = "session_id"
	FieldUserID    Field = "user_id"
)

// User is one identity record. The zero string means a nullable
// attribute is unset.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
	SessionToken   string `json:"session_token,omitempty"`
	ResetToken     string `json:"reset_token,omitempty"`
}

// Session is one durable session binding. Expiry is never stored; it is
// recomputed from CreatedAt and the configured duration at lookup time.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore is the system of record for users.
type UserStore interface {
	// AddUser persists a new user and returns it with an assigned ID.
	AddUser(email, hashedPassword string) (*User, error)
	// FindUser returns the first user matching every predicate field.
	// ErrNotFound when zero rows match, ErrUnknownField for a predicate
	// key that is not a user attribute.
	FindUser(by map[Field]string) (*User, error)
	// UpdateUser assigns the given fields on the user with the given ID.
	// An empty value clears a nullable field.
	UpdateUser(id string, set map[Field]string) error
}

// SessionStore persists session bindings for the durable session source.
type SessionStore interface {
	// FindSessions returns all sessions matching every predicate field.
	FindSessions(by map[Field]string) ([]*Session, error)
	// SaveSession persists a session binding.
	SaveSession(s *Session) error
	// DeleteSession removes a session binding. ErrNotFound when the
	// session does not exist.
	DeleteSession(s *Session) error
}

// userFields are the predicate keys FindUser and UpdateUser accept.
var userFields = map[Field]bool{
	FieldID:             true,
	FieldEmail:          true,
	FieldHashedPassword: true,
	FieldSessionToken:   true,
	FieldResetToken:     true,
}

// sessionFields are the predicate keys FindSessions accepts.
var sessionFields = map[Field]bool{
	FieldSessionID: true,
	FieldUserID:    true,
}

// ValidateUserFields returns ErrUnknownField for the first key that is
// not a user attribute.
func ValidateUserFields(by map[Field]string) error {
	for f := range by {
		if !userFields[f] {
			return ErrUnknownField
		}
	}
	return nil
}

// ValidateSessionFields returns ErrUnknownField for the first key that
// is not a session attribute.
func ValidateSessionFields(by map[Field]string) error {
	for f := range by {
		if !sessionFields[f] {
			return ErrUnknownField
		}
	}
	return nil
}

// MatchUser reports whether every predicate field equals the user's value.
func MatchUser(u *User, by map[Field]string) bool {
	for f, want := range by {
		var got string
		switch f {
		case FieldID:
			got = u.ID
		case FieldEmail:
			got = u.Email
		case FieldHashedPassword:
			got = u.HashedPassword
		case FieldSessionToken:
			got = u.SessionToken
		case FieldResetToken:
			got = u.ResetToken
		}
		if got != want {
			return false
		}
	}
	return true
}

// MatchSession reports whether every predicate field equals the session's value.
func MatchSession(s *Session, by map[Field]string) bool {
	for f, want := range by {
		var got string
		switch f {
		case FieldSessionID:
			got = s.ID
		case FieldUserID:
			got = s.UserID
		}
		if got != want {
			return false
		}
	}
	return true
}

// AssignUser applies field assignments to a user in place.
// Assumes the fields were validated.
func AssignUser(u *User, set map[Field]string) {
	for f, v := range set {
		switch f {
		case FieldEmail:
			u.Email = v
		case FieldHashedPassword:
			u.HashedPassword = v
		case FieldSessionToken:
			u.SessionToken = v
		case FieldResetToken:
			u.ResetToken = v
		}
	}
}
