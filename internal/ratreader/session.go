package ratreader

import (
	"context"
	"time"
)

type (
	// Session is a time-bounded capability pointing at exactly one user.
	//
	// Expired rows are never proactively purged: expiry is enforced at read
	// time only.
	Session struct {
		Token     string    `db:"token"`
		UserID    string    `db:"user_id"`
		CreatedAt time.Time `db:"created_at"`
		ExpiresAt time.Time `db:"expires_at"`
	}

	SessionRepo interface {
		InsertSession(ctx context.Context, sess Session) error
		SessionByToken(ctx context.Context, token string) (Session, error)
		DeleteSession(ctx context.Context, token string) error
	}
)
