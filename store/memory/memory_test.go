package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnthorny/gatehouse/store"
)

func TestUserStoreAddAndFind(t *testing.T) {
	s := NewUserStore()

	u, err := s.AddUser("bob@example.com", "digest")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "bob@example.com", u.Email)

	got, err := s.FindUser(map[store.Field]string{store.FieldEmail: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.FindUser(map[store.Field]string{store.FieldID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)
}

func TestUserStoreFindNotFound(t *testing.T) {
	s := NewUserStore()
	_, err := s.FindUser(map[store.Field]string{store.FieldEmail: "nobody@example.com"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStoreUnknownField(t *testing.T) {
	s := NewUserStore()

	_, err := s.FindUser(map[store.Field]string{"favorite_color": "blue"})
	require.ErrorIs(t, err, store.ErrUnknownField)

	u, err := s.AddUser("bob@example.com", "digest")
	require.NoError(t, err)

	err = s.UpdateUser(u.ID, map[store.Field]string{"favorite_color": "blue"})
	require.ErrorIs(t, err, store.ErrUnknownField)
}

func TestUserStoreUpdate(t *testing.T) {
	s := NewUserStore()
	u, err := s.AddUser("bob@example.com", "digest")
	require.NoError(t, err)

	err = s.UpdateUser(u.ID, map[store.Field]string{
		store.FieldSessionToken: "tok-1",
		store.FieldResetToken:   "reset-1",
	})
	require.NoError(t, err)

	got, err := s.FindUser(map[store.Field]string{store.FieldSessionToken: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "reset-1", got.ResetToken)

	// Clearing a nullable field.
	require.NoError(t, s.UpdateUser(u.ID, map[store.Field]string{store.FieldSessionToken: ""}))
	_, err = s.FindUser(map[store.Field]string{store.FieldSessionToken: "tok-1"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStoreUpdateMissing(t *testing.T) {
	s := NewUserStore()
	err := s.UpdateUser("999", map[store.Field]string{store.FieldSessionToken: "tok"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStoreReturnsCopies(t *testing.T) {
	s := NewUserStore()
	u, err := s.AddUser("bob@example.com", "digest")
	require.NoError(t, err)

	u.Email = "mutated@example.com"
	got, err := s.FindUser(map[store.Field]string{store.FieldID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)
}

func TestSessionStore(t *testing.T) {
	s := NewSessionStore()

	sess := &store.Session{ID: "sess-1", UserID: "user-1", CreatedAt: time.Now()}
	require.NoError(t, s.SaveSession(sess))

	recs, err := s.FindSessions(map[store.Field]string{store.FieldSessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "user-1", recs[0].UserID)

	recs, err = s.FindSessions(map[store.Field]string{store.FieldUserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	recs, err = s.FindSessions(map[store.Field]string{store.FieldSessionID: "absent"})
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = s.FindSessions(map[store.Field]string{store.FieldEmail: "x"})
	require.ErrorIs(t, err, store.ErrUnknownField)

	require.NoError(t, s.DeleteSession(sess))
	require.ErrorIs(t, s.DeleteSession(sess), store.ErrNotFound)
}
