package ratreader

import (
	"context"
	"time"
)

type (
	// Article is a stored feed item. Articles are immutable once inserted:
	// re-ingesting a feed never updates or duplicates a row already present
	// for the same (feed, link).
	Article struct {
		ID          string    `db:"id"`
		FeedID      string    `db:"feed_id"`
		Title       string    `db:"title"`
		Description string    `db:"description"` // raw HTML fragment, stored verbatim
		Link        string    `db:"link"`
		PubDate     time.Time `db:"pub_date"` // UTC; the zero time means "unknown date"
		CreatedAt   time.Time `db:"created_at"`
	}

	// ArticleWithFeed joins an article with its owning feed's display name
	// for listing.
	ArticleWithFeed struct {
		Article

		FeedName string `db:"feed_name"`
	}

	// Candidate is a parsed-but-not-yet-deduplicated item from a feed
	// document.
	Candidate struct {
		Title       string
		Description string
		Link        string
		Published   time.Time // UTC; zero when the source date was absent or unparseable
	}

	ArticleRepo interface {
		// InsertArticles inserts candidates for the feed, skipping any whose
		// (feed_id, link) already exists. Returns how many rows this call
		// added. Idempotent and order-independent.
		InsertArticles(ctx context.Context, feedID string, candidates []Candidate) (int, error)
		// ArticlesByUser lists articles belonging to feeds owned by userID,
		// newest publish date first, capped at 50. A non-empty feedID
		// restricts to that feed; a feed owned by someone else yields an
		// empty result rather than an error.
		ArticlesByUser(ctx context.Context, userID, feedID string) ([]ArticleWithFeed, error)
		// ArticleForUser fetches one article, verifying ownership through its
		// feed.
		ArticleForUser(ctx context.Context, userID, articleID string) (ArticleWithFeed, error)
	}
)
