package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratreader/internal/ratreader"
)

// Map-backed SessionRepo so the expiry clock can be driven precisely.
type fakeRepo struct {
	sessions map[string]ratreader.Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: map[string]ratreader.Session{}}
}

func (f *fakeRepo) InsertSession(_ context.Context, sess ratreader.Session) error {
	f.sessions[sess.Token] = sess
	return nil
}

func (f *fakeRepo) SessionByToken(_ context.Context, token string) (ratreader.Session, error) {
	sess, ok := f.sessions[token]
	if !ok {
		return ratreader.Session{}, ratreader.ErrNotFound
	}
	return sess, nil
}

func (f *fakeRepo) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func TestCreate_TokenShape(t *testing.T) {
	store := NewStore(newFakeRepo())

	a, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)
	b, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)

	// 32 bytes hex-encoded.
	assert.Len(t, a.Token, 64)
	assert.NotEqual(t, a.Token, b.Token)
	assert.True(t, a.ExpiresAt.Equal(a.CreatedAt.Add(TTL)))
}

func TestResolve_ExpiryBoundary(t *testing.T) {
	var (
		created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		now     = created
		repo    = newFakeRepo()
		store   = NewStoreAtTime(repo, func() time.Time { return now })
	)

	sess, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)

	// Any instant strictly before expiry resolves.
	now = sess.ExpiresAt.Add(-time.Second)
	userID, err := store.Resolve(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// Exactly at expiry is already invalid.
	now = sess.ExpiresAt
	_, err = store.Resolve(context.Background(), sess.Token)
	require.ErrorIs(t, err, ratreader.ErrUnauthenticated)

	// The expired row is left in place; expiry is read-time only.
	_, ok := repo.sessions[sess.Token]
	assert.True(t, ok)
}

func TestResolve_UnknownToken(t *testing.T) {
	store := NewStore(newFakeRepo())

	_, err := store.Resolve(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ratreader.ErrUnauthenticated)
}

func TestRevoke(t *testing.T) {
	store := NewStore(newFakeRepo())

	sess, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)

	require.NoError(t, store.Revoke(context.Background(), sess.Token))
	_, err = store.Resolve(context.Background(), sess.Token)
	require.ErrorIs(t, err, ratreader.ErrUnauthenticated)

	// Revoking again is a no-op, not an error.
	require.NoError(t, store.Revoke(context.Background(), sess.Token))
}
