// Package session issues, validates, and revokes the opaque bearer tokens
// that gate the API.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"ratreader/internal/ratreader"
)

// How long a session stays valid after creation. There is no sliding
// renewal: using a token never extends it.
const TTL = 30 * 24 * time.Hour

// Number of random bytes per token: 256 bits of entropy, hex-encoded.
const tokenBytes = 32

type Store struct {
	repo ratreader.SessionRepo
	now  func() time.Time
}

func NewStore(repo ratreader.SessionRepo) *Store {
	return &Store{
		repo: repo,
		now:  time.Now,
	}
}

// NewStoreAtTime is NewStore with a caller-supplied clock, for tests that
// need to cross the expiry boundary.
func NewStoreAtTime(repo ratreader.SessionRepo, now func() time.Time) *Store {
	return &Store{
		repo: repo,
		now:  now,
	}
}

// Create mints a new token for the user and persists it with expiry
// now + TTL. Token collision is treated as negligible given the entropy.
func (s *Store) Create(ctx context.Context, userID string) (ratreader.Session, error) {
	byts := make([]byte, tokenBytes)
	if _, err := rand.Read(byts); err != nil {
		return ratreader.Session{}, fmt.Errorf("error generating token: %s", err)
	}

	now := s.now()
	sess := ratreader.Session{
		Token:     hex.EncodeToString(byts),
		UserID:    userID,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(TTL).UTC(),
	}
	if err := s.repo.InsertSession(ctx, sess); err != nil {
		return ratreader.Session{}, err
	}

	return sess, nil
}

// Resolve maps a token to its user id. Absent tokens and tokens at or past
// their expiry fail with [ratreader.ErrUnauthenticated]. Expired rows are
// left in place: expiry is enforced here at read time only.
func (s *Store) Resolve(ctx context.Context, token string) (string, error) {
	sess, err := s.repo.SessionByToken(ctx, token)
	if errors.Is(err, ratreader.ErrNotFound) {
		return "", ratreader.ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}

	if !s.now().Before(sess.ExpiresAt) {
		return "", fmt.Errorf("session expired: %w", ratreader.ErrUnauthenticated)
	}

	return sess.UserID, nil
}

// Revoke deletes the session if present. Revoking an absent or already
// expired token is a no-op.
func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}
