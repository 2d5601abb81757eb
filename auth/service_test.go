package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnthorny/gatehouse/store"
	"github.com/Arnthorny/gatehouse/store/memory"
)

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := HashPassword("opensesame")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotEqual(t, "opensesame", digest)

	assert.True(t, VerifyPassword(digest, "opensesame"))
	assert.False(t, VerifyPassword(digest, "wrong"))
	assert.False(t, VerifyPassword("", "opensesame"))
}

func TestHashPasswordSalted(t *testing.T) {
	d1, err := HashPassword("opensesame")
	require.NoError(t, err)
	d2, err := HashPassword("opensesame")
	require.NoError(t, err)

	// Per-call random salt: same input, different digests, both verify.
	assert.NotEqual(t, d1, d2)
	assert.True(t, VerifyPassword(d1, "opensesame"))
	assert.True(t, VerifyPassword(d2, "opensesame"))
}

func TestHashPasswordOverlongInput(t *testing.T) {
	// bcrypt rejects inputs over 72 bytes instead of truncating them.
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	_, err := HashPassword(string(long))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPasswordUnicodeNormalization(t *testing.T) {
	// "café" in composed and decomposed forms: different bytes, same text.
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	require.NotEqual(t, composed, decomposed)

	digest, err := HashPassword(composed)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(digest, decomposed))

	digest, err = HashPassword(decomposed)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(digest, composed))
}

func TestRegister(t *testing.T) {
	svc := NewCredentialService(memory.NewUserStore())

	u, err := svc.Register("bob@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "secret123", u.HashedPassword)
}

func TestRegisterDuplicate(t *testing.T) {
	users := memory.NewUserStore()
	svc := NewCredentialService(users)

	_, err := svc.Register("bob@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register("bob@example.com", "other456")
	require.ErrorIs(t, err, ErrDuplicateUser)

	// Exactly one record remains and the original password still works.
	assert.True(t, svc.Authenticate("bob@example.com", "secret123"))
	assert.False(t, svc.Authenticate("bob@example.com", "other456"))
}

func TestAuthenticate(t *testing.T) {
	svc := NewCredentialService(memory.NewUserStore())
	_, err := svc.Register("bob@example.com", "secret123")
	require.NoError(t, err)

	assert.True(t, svc.Authenticate("bob@example.com", "secret123"))
	assert.False(t, svc.Authenticate("bob@example.com", "wrong"))
	assert.False(t, svc.Authenticate("nobody@example.com", "secret123"))
	assert.False(t, svc.Authenticate("", "secret123"))
	assert.False(t, svc.Authenticate("bob@example.com", ""))
}

func TestSessionTokenLifecycle(t *testing.T) {
	users := memory.NewUserStore()
	svc := NewCredentialService(users)
	registered, err := svc.Register("bob@example.com", "secret123")
	require.NoError(t, err)

	tok, ok := svc.IssueSessionToken("bob@example.com")
	require.True(t, ok)
	require.NotEmpty(t, tok)

	u, ok := svc.UserBySessionToken(tok)
	require.True(t, ok)
	assert.Equal(t, registered.ID, u.ID)

	// Reissuing overwrites the old token.
	tok2, ok := svc.IssueSessionToken("bob@example.com")
	require.True(t, ok)
	assert.NotEqual(t, tok, tok2)
	_, ok = svc.UserBySessionToken(tok)
	assert.False(t, ok)

	svc.InvalidateSession(registered.ID)
	_, ok = svc.UserBySessionToken(tok2)
	assert.False(t, ok)

	// Unknown email and unknown user id are non-errors.
	_, ok = svc.IssueSessionToken("nobody@example.com")
	assert.False(t, ok)
	svc.InvalidateSession("999")
	svc.InvalidateSession("")

	_, ok = svc.UserBySessionToken("")
	assert.False(t, ok)
}

func TestResetTokenRoundTrip(t *testing.T) {
	users := memory.NewUserStore()
	svc := NewCredentialService(users)
	registered, err := svc.Register("bob@example.com", "oldpassword")
	require.NoError(t, err)

	tok, err := svc.IssueResetToken("bob@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	require.NoError(t, svc.UpdatePassword(tok, "newpassword"))

	assert.True(t, svc.Authenticate("bob@example.com", "newpassword"))
	assert.False(t, svc.Authenticate("bob@example.com", "oldpassword"))

	// The token is single-use.
	require.ErrorIs(t, svc.UpdatePassword(tok, "thirdpassword"), ErrInvalidToken)

	u, err := users.FindUser(map[store.Field]string{store.FieldID: registered.ID})
	require.NoError(t, err)
	assert.Empty(t, u.ResetToken)
}

func TestIssueResetTokenOverwrites(t *testing.T) {
	svc := NewCredentialService(memory.NewUserStore())
	_, err := svc.Register("bob@example.com", "oldpassword")
	require.NoError(t, err)

	tok1, err := svc.IssueResetToken("bob@example.com")
	require.NoError(t, err)
	tok2, err := svc.IssueResetToken("bob@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok2)

	// The superseded token no longer works.
	require.ErrorIs(t, svc.UpdatePassword(tok1, "newpassword"), ErrInvalidToken)
	require.NoError(t, svc.UpdatePassword(tok2, "newpassword"))
}

func TestIssueResetTokenUnknownEmail(t *testing.T) {
	svc := NewCredentialService(memory.NewUserStore())
	_, err := svc.IssueResetToken("nobody@example.com")
	require.ErrorIs(t, err, ErrNoSuchUser)
}

func TestUpdatePasswordInvalidInputs(t *testing.T) {
	svc := NewCredentialService(memory.NewUserStore())

	require.ErrorIs(t, svc.UpdatePassword("", "newpassword"), ErrInvalidToken)
	require.ErrorIs(t, svc.UpdatePassword("sometoken", ""), ErrInvalidToken)
	require.ErrorIs(t, svc.UpdatePassword("unknown-token", "newpassword"), ErrInvalidToken)
}
