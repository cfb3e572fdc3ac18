package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ratreader/internal/ratreader"
)

func (r Repo) InsertSession(ctx context.Context, sess ratreader.Session) error {
	const q = `INSERT INTO sessions (token, user_id, created_at, expires_at)
	VALUES (:token, :user_id, :created_at, :expires_at);`

	if _, err := r.db.NamedExecContext(ctx, q, sess); err != nil {
		return fmt.Errorf("error inserting session: %s", err)
	}

	return nil
}

func (r Repo) SessionByToken(ctx context.Context, token string) (ratreader.Session, error) {
	const q = `SELECT * FROM sessions WHERE token = ?;`

	var sess ratreader.Session
	err := r.db.GetContext(ctx, &sess, q, token)
	if errors.Is(err, sql.ErrNoRows) {
		return ratreader.Session{}, ratreader.ErrNotFound
	}
	if err != nil {
		return ratreader.Session{}, fmt.Errorf("error fetching session: %s", err)
	}

	return sess, nil
}

// DeleteSession removes the session row if present. Deleting an absent token
// is not an error.
func (r Repo) DeleteSession(ctx context.Context, token string) error {
	const q = `DELETE FROM sessions WHERE token = ?;`

	if _, err := r.db.ExecContext(ctx, q, token); err != nil {
		return fmt.Errorf("error deleting session: %s", err)
	}

	return nil
}
