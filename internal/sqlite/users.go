package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ratreader/internal/ratreader"
)

const userNamespace = "-usr"

func (r Repo) InsertUser(ctx context.Context, username, passwordHash string) (ratreader.User, error) {
	const q = `INSERT INTO users (id, username, password_hash)
	VALUES (:id, :username, :password_hash);`

	usr := ratreader.User{
		ID:           uuid.NewString() + userNamespace,
		Username:     username,
		PasswordHash: passwordHash,
	}
	_, err := r.db.NamedExecContext(ctx, q, usr)
	if isUniqueViolation(err) {
		return ratreader.User{}, fmt.Errorf("username already taken: %w", ratreader.ErrConflict)
	}
	if err != nil {
		return ratreader.User{}, fmt.Errorf("error inserting user: %s", err)
	}

	return r.User(ctx, usr.ID)
}

func (r Repo) User(ctx context.Context, id string) (ratreader.User, error) {
	const q = `SELECT * FROM users WHERE id = ?;`

	var usr ratreader.User
	err := r.db.GetContext(ctx, &usr, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ratreader.User{}, ratreader.ErrNotFound
	}
	if err != nil {
		return ratreader.User{}, fmt.Errorf("error fetching user: %s", err)
	}

	return usr, nil
}

func (r Repo) UserByUsername(ctx context.Context, username string) (ratreader.User, error) {
	const q = `SELECT * FROM users WHERE username = ?;`

	var usr ratreader.User
	err := r.db.GetContext(ctx, &usr, q, username)
	if errors.Is(err, sql.ErrNoRows) {
		return ratreader.User{}, ratreader.ErrNotFound
	}
	if err != nil {
		return ratreader.User{}, fmt.Errorf("error fetching user by username: %s", err)
	}

	return usr, nil
}
