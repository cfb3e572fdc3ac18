package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	raterrs "ratreader/internal/errors"
)

type (
	addFeedRequest struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	}

	feedResp struct {
		ID          string     `json:"id"`
		Name        string     `json:"name"`
		URL         string     `json:"url"`
		LastFetched *time.Time `json:"last_fetched"`
		IsActive    bool       `json:"is_active"`
	}
)

func (a addFeedRequest) Validate() error {
	if a.URL == "" {
		return errors.New("feed URL is required")
	}
	u, err := url.Parse(a.URL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("feed URL must be an absolute http(s) URL")
	}

	return nil
}

func (s *Server) handleListFeeds(w http.ResponseWriter, r *http.Request) error {
	feeds, err := s.repo.ActiveFeedsByUser(r.Context(), userID(r.Context()))
	if err != nil {
		return err
	}

	resp := make([]feedResp, 0, len(feeds))
	for _, f := range feeds {
		resp = append(resp, feedResp{
			ID:          f.ID,
			Name:        f.Name,
			URL:         f.URL,
			LastFetched: f.LastFetched,
			IsActive:    f.IsActive,
		})
	}

	return writeJSON(w, http.StatusOK, struct {
		Feeds []feedResp `json:"feeds"`
	}{Feeds: resp})
}

func (s *Server) handleAddFeed(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeValid[addFeedRequest](r.Body)
	if err != nil {
		return raterrs.E(http.StatusBadRequest, err)
	}

	feed, err := s.ingestor.RegisterFeed(r.Context(), userID(r.Context()), body.URL, body.Name)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		FeedID  string `json:"feedId"`
	}{Success: true, FeedID: feed.ID})
}
