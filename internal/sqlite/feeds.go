package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ratreader/internal/ratreader"
)

const feedNamespace = "-fd"

func (r Repo) InsertFeed(ctx context.Context, feed ratreader.Feed) (ratreader.Feed, error) {
	const q = `INSERT INTO feeds (id, user_id, name, url, is_active)
	VALUES (:id, :user_id, :name, :url, :is_active);`

	feed.ID = fmt.Sprintf("%s%s", uuid.NewString(), feedNamespace)
	feed.IsActive = true
	if _, err := r.db.NamedExecContext(ctx, q, feed); err != nil {
		return ratreader.Feed{}, fmt.Errorf("error inserting feed: %s", err)
	}

	return r.Feed(ctx, feed.ID)
}

func (r Repo) Feed(ctx context.Context, id string) (ratreader.Feed, error) {
	const q = `SELECT * FROM feeds WHERE id = ?;`

	var feed ratreader.Feed
	err := r.db.GetContext(ctx, &feed, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ratreader.Feed{}, ratreader.ErrNotFound
	}
	if err != nil {
		return ratreader.Feed{}, fmt.Errorf("error fetching feed: %s", err)
	}

	return feed, nil
}

func (r Repo) ActiveFeedsByUser(ctx context.Context, userID string) ([]ratreader.Feed, error) {
	const q = `SELECT * FROM feeds WHERE user_id = ? AND is_active = TRUE ORDER BY created_at;`

	feeds := []ratreader.Feed{}
	if err := r.db.SelectContext(ctx, &feeds, q, userID); err != nil {
		return nil, fmt.Errorf("error selecting feeds: %s", err)
	}

	return feeds, nil
}

func (r Repo) TouchFeed(ctx context.Context, id string, fetchedAt time.Time) error {
	const q = `UPDATE feeds SET last_fetched = ? WHERE id = ?;`

	if _, err := r.db.ExecContext(ctx, q, fetchedAt.UTC(), id); err != nil {
		return fmt.Errorf("error stamping feed: %s", err)
	}

	return nil
}
