package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	raterrs "ratreader/internal/errors"
	"ratreader/internal/ratreader"
)

// ArticleResp is the wire shape of one stored article, joined with its
// feed's display name.
type ArticleResp struct {
	ID          string    `json:"id"`
	FeedID      string    `json:"feed_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	PubDate     time.Time `json:"pub_date"`
	CreatedAt   time.Time `json:"created_at"`
	FeedName    string    `json:"feed_name"`
}

func toArticleResp(a ratreader.ArticleWithFeed) ArticleResp {
	return ArticleResp{
		ID:          a.ID,
		FeedID:      a.FeedID,
		Title:       a.Title,
		Description: a.Description,
		Link:        a.Link,
		PubDate:     a.PubDate,
		CreatedAt:   a.CreatedAt,
		FeedName:    a.FeedName,
	}
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) error {
	articles, err := s.repo.ArticlesByUser(r.Context(), userID(r.Context()), r.URL.Query().Get("feed_id"))
	if err != nil {
		return err
	}

	resp := make([]ArticleResp, 0, len(articles))
	for _, a := range articles {
		resp = append(resp, toArticleResp(a))
	}

	return writeJSON(w, http.StatusOK, struct {
		Articles []ArticleResp `json:"articles"`
	}{Articles: resp})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) error {
	var (
		id  = mux.Vars(r)["id"]
		uid = userID(r.Context())
	)

	// Articles never change after insertion, so a hit can skip storage. The
	// key includes the caller so a cached article is never served across the
	// ownership boundary.
	cacheKey := uid + "/" + id
	if resp, ok := s.articleCache.Get(cacheKey); ok {
		return writeJSON(w, http.StatusOK, resp)
	}

	art, err := s.repo.ArticleForUser(r.Context(), uid, id)
	if errors.Is(err, ratreader.ErrNotFound) {
		return raterrs.E(http.StatusNotFound, "article not found")
	}
	if err != nil {
		return err
	}

	resp := toArticleResp(art)
	s.articleCache.Add(cacheKey, resp)

	return writeJSON(w, http.StatusOK, resp)
}
