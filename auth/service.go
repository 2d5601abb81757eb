package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/Arnthorny/gatehouse/internal/token"
	"github.com/Arnthorny/gatehouse/store"
)

// CredentialService owns password hashing/verification and token
// issuance, independent of which session strategy is active.
type CredentialService struct {
	users store.UserStore
}

// NewCredentialService creates a credential service over the given
// user store.
func NewCredentialService(users store.UserStore) *CredentialService {
	return &CredentialService{users: users}
}

// normalizePassword applies NFKD so the same text verifies regardless
// of Unicode composition.
func normalizePassword(password string) []byte {
	return []byte(norm.NFKD.String(password))
}

// HashPassword returns a salted bcrypt digest of the password. The salt
// is randomized per call, so hashing the same input twice yields
// different digests. The input is passed whole to the primitive; bcrypt
// rejects over-long inputs with an error instead of truncating them.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(normalizePassword(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("hashing password: %w", ErrPasswordTooLong)
		}
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether the digest was produced from exactly
// this password.
func VerifyPassword(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), normalizePassword(password)) == nil
}

// Register hashes the password and persists a new user. ErrDuplicateUser
// when an account with that email already exists.
func (s *CredentialService) Register(email, password string) (*store.User, error) {
	if _, err := s.users.FindUser(map[store.Field]string{store.FieldEmail: email}); err == nil {
		return nil, fmt.Errorf("%s: %w", email, ErrDuplicateUser)
	}
	digest, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.AddUser(email, digest)
	if err != nil {
		return nil, fmt.Errorf("adding user: %w", err)
	}
	return u, nil
}

// Authenticate reports whether the email/password pair is valid. It
// never returns an error: empty inputs, unknown emails, and failed
// verification all read as false.
func (s *CredentialService) Authenticate(email, password string) bool {
	if email == "" || password == "" {
		return false
	}
	u, err := s.users.FindUser(map[store.Field]string{store.FieldEmail: email})
	if err != nil {
		return false
	}
	return VerifyPassword(u.HashedPassword, password)
}

// IssueSessionToken generates a fresh opaque token and persists it onto
// the user record, overwriting any prior value. Absent when the email is
// unknown or the token cannot be persisted.
func (s *CredentialService) IssueSessionToken(email string) (string, bool) {
	u, err := s.users.FindUser(map[store.Field]string{store.FieldEmail: email})
	if err != nil {
		return "", false
	}
	tok := token.New()
	if err := s.users.UpdateUser(u.ID, map[store.Field]string{store.FieldSessionToken: tok}); err != nil {
		return "", false
	}
	return tok, true
}

// UserBySessionToken resolves the user holding the given session token.
func (s *CredentialService) UserBySessionToken(tok string) (*store.User, bool) {
	if tok == "" {
		return nil, false
	}
	u, err := s.users.FindUser(map[store.Field]string{store.FieldSessionToken: tok})
	if err != nil {
		return nil, false
	}
	return u, true
}

// InvalidateSession clears the stored session token for the user. A
// missing user or token is a no-op, not an error.
func (s *CredentialService) InvalidateSession(userID string) {
	if userID == "" {
		return
	}
	_ = s.users.UpdateUser(userID, map[store.Field]string{store.FieldSessionToken: ""})
}

// IssueResetToken generates a single-use password-reset token for the
// account, overwriting any previously issued one. ErrNoSuchUser when no
// account matches.
func (s *CredentialService) IssueResetToken(email string) (string, error) {
	u, err := s.users.FindUser(map[store.Field]string{store.FieldEmail: email})
	if err != nil {
		return "", fmt.Errorf("%s: %w", email, ErrNoSuchUser)
	}
	tok := token.New()
	if err := s.users.UpdateUser(u.ID, map[store.Field]string{store.FieldResetToken: tok}); err != nil {
		return "", fmt.Errorf("persisting reset token: %w", err)
	}
	return tok, nil
}

// UpdatePassword consumes a reset token: the new password is hashed and
// stored and the token cleared in a single store update, so neither
// mutation can land without the other.
func (s *CredentialService) UpdatePassword(resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return ErrInvalidToken
	}
	u, err := s.users.FindUser(map[store.Field]string{store.FieldResetToken: resetToken})
	if err != nil {
		return ErrInvalidToken
	}
	digest, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUser(u.ID, map[store.Field]string{
		store.FieldHashedPassword: digest,
		store.FieldResetToken:     "",
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}
