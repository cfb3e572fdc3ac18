package ratreader

import (
	"context"
	"time"
)

type (
	// Feed is one user's subscription to an RSS/Atom source URL.
	Feed struct {
		ID          string     `db:"id"`
		UserID      string     `db:"user_id"`
		Name        string     `db:"name"`
		URL         string     `db:"url"`
		LastFetched *time.Time `db:"last_fetched"` // nil until the first successful fetch
		IsActive    bool       `db:"is_active"`
		CreatedAt   time.Time  `db:"created_at"`
	}

	FeedRepo interface {
		InsertFeed(ctx context.Context, feed Feed) (Feed, error)
		Feed(ctx context.Context, id string) (Feed, error)
		// ActiveFeedsByUser returns the user's feeds with is_active set,
		// ordered by creation time.
		ActiveFeedsByUser(ctx context.Context, userID string) ([]Feed, error)
		// TouchFeed stamps last_fetched for the feed.
		TouchFeed(ctx context.Context, id string, fetchedAt time.Time) error
	}
)
