package bbolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnthorny/gatehouse/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreFromFile(filepath.Join(t.TempDir(), "gatehouse.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	u, err := s.AddUser("bob@example.com", "digest")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	got, err := s.FindUser(map[store.Field]string{store.FieldEmail: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = s.UpdateUser(u.ID, map[store.Field]string{store.FieldResetToken: "reset-1"})
	require.NoError(t, err)

	got, err = s.FindUser(map[store.Field]string{store.FieldResetToken: "reset-1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.FindUser(map[store.Field]string{store.FieldEmail: "nobody@example.com"})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.FindUser(map[store.Field]string{"favorite_color": "blue"})
	require.ErrorIs(t, err, store.ErrUnknownField)

	err = s.UpdateUser("999", map[store.Field]string{store.FieldResetToken: "x"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserIDsAreSequential(t *testing.T) {
	s := newTestStore(t)

	u1, err := s.AddUser("a@example.com", "d1")
	require.NoError(t, err)
	u2, err := s.AddUser("b@example.com", "d2")
	require.NoError(t, err)
	assert.NotEqual(t, u1.ID, u2.ID)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	sess := &store.Session{ID: "sess-1", UserID: "user-1", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.SaveSession(sess))

	recs, err := s.FindSessions(map[store.Field]string{store.FieldSessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "user-1", recs[0].UserID)
	assert.WithinDuration(t, sess.CreatedAt, recs[0].CreatedAt, time.Second)

	_, err = s.FindSessions(map[store.Field]string{store.FieldEmail: "x"})
	require.ErrorIs(t, err, store.ErrUnknownField)

	require.NoError(t, s.DeleteSession(sess))
	require.ErrorIs(t, s.DeleteSession(sess), store.ErrNotFound)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gatehouse.db")

	s1, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	u, err := s1.AddUser("bob@example.com", "digest")
	require.NoError(t, err)
	require.NoError(t, s1.SaveSession(&store.Session{ID: "sess-1", UserID: u.ID, CreatedAt: time.Now().UTC()}))
	require.NoError(t, s1.Close())

	s2, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.FindUser(map[store.Field]string{store.FieldEmail: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	recs, err := s2.FindSessions(map[store.Field]string{store.FieldUserID: u.ID})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
