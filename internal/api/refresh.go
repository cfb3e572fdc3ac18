package api

import "net/http"

// handleRefresh re-ingests all of the caller's active feeds. Individual feed
// failures are soft and only show up as a reduced count; the request itself
// only fails on a storage-level problem.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	refreshed, err := s.ingestor.RefreshAll(r.Context(), userID(r.Context()))
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, struct {
		Success   bool `json:"success"`
		Refreshed int  `json:"refreshed"`
	}{Success: true, Refreshed: refreshed})
}
