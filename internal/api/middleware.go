package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ratreader/internal/logger"
	"ratreader/internal/ratreader"
)

func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("request received", "method", r.Method, "path", r.URL.Path)
		start := time.Now()

		writer := &respCodeWriter{ResponseWriter: w}
		next.ServeHTTP(writer, r)

		slog.InfoContext(r.Context(), "request completed",
			"method", r.Method,
			"url", r.URL.String(),
			"duration", time.Since(start),
			"status_code", writer.code,
		)
	})
}

// To trap the response status code for logging later.
type respCodeWriter struct {
	http.ResponseWriter
	code int
}

func (w *respCodeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type contextKey string

const userIDKey contextKey = "userID"

// bearerToken extracts the token from an `Authorization: Bearer <token>`
// header.
func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

// requireSessionMiddleware is the single choke point in front of every
// protected route: it resolves the bearer token to a user id and puts it on
// the request context before any domain logic runs.
func (s *Server) requireSessionMiddleware(next http.Handler) http.Handler {
	return HandlerFuncE(func(w http.ResponseWriter, r *http.Request) error {
		token, ok := bearerToken(r)
		if !ok {
			return raterrs401("authentication required")
		}

		userID, err := s.sessions.Resolve(r.Context(), token)
		if errors.Is(err, ratreader.ErrUnauthenticated) {
			return raterrs401("invalid or expired token")
		}
		if err != nil {
			return err
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = logger.Ctx(ctx, slog.String("user_id", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
		return nil
	})
}

// userID pulls the authenticated user id the middleware stored.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
