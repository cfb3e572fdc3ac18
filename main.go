// RatReader is a feed reader backend: registered users subscribe to
// RSS/Atom feeds and read the articles aggregated from them.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"ratreader/internal/api"
	"ratreader/internal/ingest"
	"ratreader/internal/logger"
	"ratreader/internal/migrations"
	"ratreader/internal/session"
	"ratreader/internal/sqlite"
)

type config struct {
	Port     int    `env:"PORT, default=8080"`
	Database string `env:"DATABASE, required"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	CorsOrigin     string        `env:"CORS_ORIGIN, default=*"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT, default=10s"`
	RefreshWorkers int           `env:"REFRESH_WORKERS, default=4"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	// Start the application
	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	slog.Info("running", "port", cfg.Port, "database", cfg.Database)

	// Connect to the db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_txlock=immediate&_journal_mode=WAL&_busy_timeout=5000", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Wait out a database volume that isn't answerable yet
	if err := retry.Fibonacci(ctx, time.Second, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("error pinging database: %s", err)
	}

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %s", err)
	}

	var (
		repo     = sqlite.New(dbx)
		sessions = session.NewStore(repo)
		ingestor = ingest.New(repo, ingest.Config{
			FetchTimeout: cfg.FetchTimeout,
			Workers:      cfg.RefreshWorkers,
		})
	)
	s := api.NewServer(api.Config{
		Port:       cfg.Port,
		CorsOrigin: cfg.CorsOrigin,
	}, repo, sessions, ingestor)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Start the server
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}

		return nil
	})
	g.Go(func() error {
		// Block from shutting down until the group is canceled
		<-gCtx.Done()

		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error running: %s", err)
	}

	return nil
}
