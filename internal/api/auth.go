package api

import (
	"errors"
	"net/http"

	goaway "github.com/TwiN/go-away"
	"golang.org/x/crypto/bcrypt"

	raterrs "ratreader/internal/errors"
	"ratreader/internal/ratreader"
)

func raterrs400(msg string) error {
	return raterrs.E(http.StatusBadRequest, msg)
}

func raterrs401(msg string) error {
	return raterrs.E(http.StatusUnauthorized, msg)
}

type (
	credentialsRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	userResp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}

	authResp struct {
		Success bool     `json:"success"`
		User    userResp `json:"user"`
		Token   string   `json:"token"`
	}
)

func (c credentialsRequest) Validate() error {
	if c.Username == "" || c.Password == "" {
		return errors.New("missing required fields")
	}

	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeValid[credentialsRequest](r.Body)
	if err != nil {
		return raterrs400("missing required fields")
	}
	if len(body.Username) < 3 || len(body.Username) > 32 {
		return raterrs400("username must be between 3 and 32 characters")
	}
	// Usernames show up in shared places like feed listings; keep them clean.
	if goaway.IsProfane(body.Username) {
		return raterrs400("username not allowed")
	}
	if len(body.Password) < 6 {
		return raterrs400("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	usr, err := s.repo.InsertUser(r.Context(), body.Username, string(hash))
	if errors.Is(err, ratreader.ErrConflict) {
		return raterrs400("username already taken")
	}
	if err != nil {
		return err
	}

	sess, err := s.sessions.Create(r.Context(), usr.ID)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, authResp{
		Success: true,
		User:    userResp{ID: usr.ID, Username: usr.Username},
		Token:   sess.Token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeValid[credentialsRequest](r.Body)
	if err != nil {
		return raterrs400("missing username or password")
	}

	usr, err := s.repo.UserByUsername(r.Context(), body.Username)
	if errors.Is(err, ratreader.ErrNotFound) {
		return raterrs401("invalid credentials")
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(body.Password)) != nil {
		return raterrs401("invalid credentials")
	}

	sess, err := s.sessions.Create(r.Context(), usr.ID)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, authResp{
		Success: true,
		User:    userResp{ID: usr.ID, Username: usr.Username},
		Token:   sess.Token,
	})
}

// Logout is deliberately outside the session middleware: revoking an absent
// or already-expired token still succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) error {
	if token, ok := bearerToken(r); ok {
		if err := s.sessions.Revoke(r.Context(), token); err != nil {
			return err
		}
	}

	return writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
	}{Success: true})
}

// handleViewer echoes the authenticated user, for the UI to restore its
// state from a stored token.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) error {
	usr, err := s.repo.User(r.Context(), userID(r.Context()))
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, userResp{ID: usr.ID, Username: usr.Username})
}
