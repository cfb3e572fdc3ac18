package ratreader

import (
	"context"
	"time"
)

type (
	// User is a registered account. Usernames are case-sensitive and unique.
	User struct {
		ID           string    `db:"id"`
		Username     string    `db:"username"`
		PasswordHash string    `db:"password_hash"`
		CreatedAt    time.Time `db:"created_at"`
	}

	UserRepo interface {
		InsertUser(ctx context.Context, username, passwordHash string) (User, error)
		User(ctx context.Context, id string) (User, error)
		UserByUsername(ctx context.Context, username string) (User, error)
	}
)
