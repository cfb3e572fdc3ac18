package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ratreader/internal/ratreader"
)

const articleNamespace = "-art"

// How many articles a single listing returns at most.
const listLimit = 50

// InsertArticles inserts each candidate unless a row already exists for the
// same (feed_id, link). The unique constraint is the dedup mechanism: a
// conflicting insert simply affects zero rows, so concurrent ingestions of
// the same feed need no application-level locking.
func (r Repo) InsertArticles(ctx context.Context, feedID string, candidates []ratreader.Candidate) (int, error) {
	const q = `INSERT INTO articles (id, feed_id, title, description, link, pub_date)
	VALUES (:id, :feed_id, :title, :description, :link, :pub_date)
	ON CONFLICT (feed_id, link) DO NOTHING;`

	added := 0
	for _, c := range candidates {
		art := ratreader.Article{
			ID:          fmt.Sprintf("%s%s", uuid.NewString(), articleNamespace),
			FeedID:      feedID,
			Title:       c.Title,
			Description: c.Description,
			Link:        c.Link,
			PubDate:     c.Published.UTC(),
		}
		res, err := r.db.NamedExecContext(ctx, q, art)
		if err != nil {
			return added, fmt.Errorf("error inserting article: %s", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, fmt.Errorf("error counting inserted rows: %s", err)
		}
		added += int(n)
	}

	return added, nil
}

func (r Repo) ArticlesByUser(ctx context.Context, userID, feedID string) ([]ratreader.ArticleWithFeed, error) {
	b := sq.Select(
		"a.id", "a.feed_id", "a.title", "a.description", "a.link",
		"a.pub_date", "a.created_at", "f.name AS feed_name",
	).
		From("articles a").
		Join("feeds f ON f.id = a.feed_id").
		Where(sq.Eq{"f.user_id": userID}).
		OrderBy("a.pub_date DESC").
		Limit(listLimit)
	// The join already scopes to the caller's feeds, so a feed id owned by
	// someone else yields an empty result rather than leaking its existence.
	if feedID != "" {
		b = b.Where(sq.Eq{"a.feed_id": feedID})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	articles := []ratreader.ArticleWithFeed{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting articles: %s", err)
	}

	return articles, nil
}

func (r Repo) ArticleForUser(ctx context.Context, userID, articleID string) (ratreader.ArticleWithFeed, error) {
	const q = `SELECT a.id, a.feed_id, a.title, a.description, a.link,
	a.pub_date, a.created_at, f.name AS feed_name
	FROM articles a
	JOIN feeds f ON f.id = a.feed_id
	WHERE a.id = ? AND f.user_id = ?;`

	var art ratreader.ArticleWithFeed
	err := r.db.GetContext(ctx, &art, q, articleID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ratreader.ArticleWithFeed{}, ratreader.ErrNotFound
	}
	if err != nil {
		return ratreader.ArticleWithFeed{}, fmt.Errorf("error fetching article: %s", err)
	}

	return art, nil
}
