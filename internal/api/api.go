// Package api is the HTTP surface of the service. Every route except
// register, login, and logout sits behind the bearer-token session
// middleware.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"

	raterrs "ratreader/internal/errors"
	"ratreader/internal/ingest"
	"ratreader/internal/ratreader"
	"ratreader/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("error encoding json response: %s", err)
	}

	return nil
}

// validator is a surface that can validate itself and return an error
// if something is wrong.
type validator interface {
	Validate() error
}

// decodeValid decodes a request and then validates it.
func decodeValid[V validator](r io.Reader) (V, error) {
	var v V
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("error decoding request: %w", err)
	}
	if err := v.Validate(); err != nil {
		return v, fmt.Errorf("error validating request: %w", err)
	}

	return v, nil
}

// HandlerFuncE is a modified type of [http.HandlerFunc] that returns an error.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFuncE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a structured error, or coerce it to one. Anything
	// unexpected becomes a generic 500 so internals never leak to the caller.
	sErr := &raterrs.Error{}
	if !errors.As(err, &sErr) {
		slog.ErrorContext(r.Context(), "unexpected handler error", "error", err)
		sErr = raterrs.E(http.StatusInternalServerError, "internal server error")
	}

	if err := writeJSON(w, sErr.Status, sErr); err != nil {
		slog.ErrorContext(r.Context(), "error writing response", "error", err)
	}
}

// errRouter is a newtype around a mux router that allows attaching handlers that return errors.
type errRouter struct {
	*mux.Router
}

func (r errRouter) HandleFuncE(path string, f HandlerFuncE) *mux.Route {
	return r.Handle(path, f)
}

type (
	// Server handles the reader API: accounts, sessions, feed
	// subscriptions, and the articles they aggregate.
	Server struct {
		*http.Server

		repo     ratreader.Repository
		sessions *session.Store
		ingestor *ingest.Ingestor

		// Articles are immutable once stored, so single-article responses
		// cache safely.
		articleCache *lru.Cache[string, ArticleResp]
	}

	Config struct {
		Port       int
		CorsOrigin string
	}
)

func NewServer(cfg Config, repo ratreader.Repository, sessions *session.Store, ingestor *ingest.Ingestor) *Server {
	var (
		r        = errRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, ArticleResp](1024)
	)

	srvr := &Server{
		repo:         repo,
		sessions:     sessions,
		ingestor:     ingestor,
		articleCache: cache,
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Port),
			ReadTimeout: 5 * time.Second,
			// Refresh fans out over every active feed, each with its own
			// fetch timeout, so writes get far more headroom than reads.
			WriteTimeout: 2 * time.Minute,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{cfg.CorsOrigin}),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type", "authorization"}),
			)(r),
		},
	}

	r.Use(AccessLogMiddleware) // Log everything
	r.NotFoundHandler = HandlerFuncE(func(http.ResponseWriter, *http.Request) error {
		return raterrs.E(http.StatusNotFound, "endpoint not found")
	})

	r.HandleFuncE("/api/register", srvr.handleRegister).Methods(http.MethodPost)
	r.HandleFuncE("/api/login", srvr.handleLogin).Methods(http.MethodPost)
	r.HandleFuncE("/api/logout", srvr.handleLogout).Methods(http.MethodPost)

	authed := errRouter{Router: r.NewRoute().Subrouter()}
	authed.Use(srvr.requireSessionMiddleware)
	authed.HandleFuncE("/api/viewer", srvr.handleViewer).Methods(http.MethodGet)
	authed.HandleFuncE("/api/feeds", srvr.handleListFeeds).Methods(http.MethodGet)
	authed.HandleFuncE("/api/feeds", srvr.handleAddFeed).Methods(http.MethodPost)
	authed.HandleFuncE("/api/articles", srvr.handleListArticles).Methods(http.MethodGet)
	authed.HandleFuncE("/api/articles/{id}", srvr.handleGetArticle).Methods(http.MethodGet)
	authed.HandleFuncE("/api/refresh", srvr.handleRefresh).Methods(http.MethodPost)

	return srvr
}
