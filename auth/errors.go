package auth

import "errors"

var (
	// ErrDuplicateUser indicates a registration attempt for an email
	// that already has an account.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrNoSuchUser indicates no account matches the given email.
	ErrNoSuchUser = errors.New("no such user")
	// ErrInvalidToken indicates a missing, unknown, or already-consumed
	// reset token.
	ErrInvalidToken = errors.New("invalid reset token")
	// ErrPasswordTooLong indicates a password over the hashing
	// primitive's input limit.
	ErrPasswordTooLong = errors.New("password too long")
)
