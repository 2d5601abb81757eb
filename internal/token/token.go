// Package token generates the opaque identifiers used for sessions and
// password-reset tokens.
package token

import "github.com/google/uuid"

// New returns a new cryptographically random opaque token.
func New() string {
	return uuid.NewString()
}
