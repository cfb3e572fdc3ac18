// Package ingest implements the feed ingestion pipeline: fetching a feed
// URL, parsing it into candidate articles, deduplicating against storage,
// and stamping the feed's last_fetched time.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ratreader/internal/ratreader"
)

// ErrFetch marks a feed that could not be retrieved: unreachable host,
// timeout, or a non-2xx response.
var ErrFetch = errors.New("feed unreachable")

const (
	defaultFetchTimeout = 10 * time.Second
	defaultWorkers      = 4

	// Cap on the response body so one hostile feed can't balloon memory.
	maxFeedBytes = 10 << 20

	// Display name used when a feed's own title can't be determined.
	fallbackFeedName = "RSS Feed"
)

type (
	Ingestor struct {
		repo    ratreader.Repository
		client  *http.Client
		workers int
		now     func() time.Time
	}

	Config struct {
		FetchTimeout time.Duration
		Workers      int
	}

	// Outcome reports one feed's ingestion. OK distinguishes "we fetched and
	// stored successfully" (even with zero new articles) from a soft
	// failure, whose kind is in Err.
	Outcome struct {
		FeedID string
		Added  int
		OK     bool
		Err    error
	}
)

func New(repo ratreader.Repository, cfg Config) *Ingestor {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}

	return &Ingestor{
		repo:    repo,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		workers: cfg.Workers,
		now:     time.Now,
	}
}

// IngestOne runs the full pipeline for a single feed. Fetch and parse
// failures are soft: the outcome carries OK=false and last_fetched stays
// untouched. On success the feed is stamped even when nothing new was found.
func (ing *Ingestor) IngestOne(ctx context.Context, feed ratreader.Feed) Outcome {
	raw, err := ing.fetch(ctx, feed.URL)
	if err != nil {
		return Outcome{FeedID: feed.ID, Err: err}
	}

	doc, err := Parse(raw)
	if err != nil {
		return Outcome{FeedID: feed.ID, Err: err}
	}

	added, err := ing.repo.InsertArticles(ctx, feed.ID, doc.Items)
	if err != nil {
		return Outcome{FeedID: feed.ID, Added: added, Err: err}
	}

	// "We tried and succeeded" is distinct from "we found something new":
	// the stamp happens even when added is zero.
	if err := ing.repo.TouchFeed(ctx, feed.ID, ing.now()); err != nil {
		return Outcome{FeedID: feed.ID, Added: added, Err: err}
	}

	return Outcome{FeedID: feed.ID, Added: added, OK: true}
}

// RefreshAll re-ingests every active feed the user owns, fanning out over a
// bounded worker set. Feeds are independent: one feed's failure never aborts
// its siblings. Returns how many feeds refreshed cleanly, not article counts.
func (ing *Ingestor) RefreshAll(ctx context.Context, userID string) (int, error) {
	feeds, err := ing.repo.ActiveFeedsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	var (
		mu        sync.Mutex
		refreshed int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)
	for _, feed := range feeds {
		feed := feed
		g.Go(func() error {
			out := ing.IngestOne(gCtx, feed)
			if !out.OK {
				slog.WarnContext(gCtx, "feed refresh failed",
					"feed_id", feed.ID,
					"url", feed.URL,
					"error", out.Err,
				)
				return nil
			}

			mu.Lock()
			refreshed++
			mu.Unlock()
			return nil
		})
	}
	// Workers only ever return nil; failures are soft and already counted.
	_ = g.Wait()

	return refreshed, nil
}

// RegisterFeed persists a new subscription and synchronously seeds its
// initial articles. When no name is supplied the feed's own title is used,
// best effort. Neither a failed title lookup nor a failed seed ingest blocks
// registration.
func (ing *Ingestor) RegisterFeed(ctx context.Context, userID, url, name string) (ratreader.Feed, error) {
	if name == "" {
		name = ing.deriveName(ctx, url)
	}

	feed, err := ing.repo.InsertFeed(ctx, ratreader.Feed{
		UserID: userID,
		Name:   name,
		URL:    url,
	})
	if err != nil {
		return ratreader.Feed{}, err
	}

	if out := ing.IngestOne(ctx, feed); !out.OK {
		slog.WarnContext(ctx, "seeding new feed failed",
			"feed_id", feed.ID,
			"url", feed.URL,
			"error", out.Err,
		)
	}

	return ing.repo.Feed(ctx, feed.ID)
}

// deriveName fetches the feed once to read its own title element.
func (ing *Ingestor) deriveName(ctx context.Context, url string) string {
	raw, err := ing.fetch(ctx, url)
	if err != nil {
		return fallbackFeedName
	}
	doc, err := Parse(raw)
	if err != nil || doc.Title == "" {
		return fallbackFeedName
	}

	return doc.Title
}

func (ing *Ingestor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetch, err)
	}

	resp, err := ing.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrFetch, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetch, err)
	}

	return raw, nil
}
