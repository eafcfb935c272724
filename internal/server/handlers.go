package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/siteassist/siteassist/internal/db"
	"github.com/siteassist/siteassist/internal/models"
	"github.com/siteassist/siteassist/internal/service"
)

type registerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	FeedURL string `json:"feed_url"`
}

type registerResponse struct {
	UserID    string              `json:"user_id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	FeedURL   string              `json:"feed_url"`
	APIKey    string              `json:"api_key"`
	CreatedAt time.Time           `json:"created_at"`
	Sync      *service.SyncResult `json:"sync"`
}

// handleRegister creates a user and builds their corpus in one step.
// If the initial sync fails the user record is rolled back so the
// address can be registered again.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.FeedURL == "" {
		writeError(w, http.StatusBadRequest, "name, email and feed_url are required")
		return
	}

	user, err := s.users.CreateUser(r.Context(), models.UserInput{
		Name:    req.Name,
		Email:   req.Email,
		FeedURL: req.FeedURL,
		APIKey:  uuid.NewString(),
	})
	if err != nil {
		if errors.Is(err, db.ErrUserAlreadyExists) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		s.logger.Error("create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	result, err := s.sync.Sync(r.Context(), *user)
	if err != nil {
		s.logger.Error("initial sync failed, rolling back user", "user", user.ID, "error", err)
		if delErr := s.users.DeleteUser(r.Context(), user.ID); delErr != nil {
			s.logger.Error("rollback failed", "user", user.ID, "error", delErr)
		}
		if errors.Is(err, service.ErrNoContent) {
			writeError(w, http.StatusBadRequest, "feed has no published content")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to initialize content: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		FeedURL:   user.FeedURL,
		APIKey:    user.APIKey,
		CreatedAt: user.CreatedAt,
		Sync:      result,
	})
}

type queryRequest struct {
	UserID         string `json:"user_id"`
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id"`
}

// handleQuery answers a question against the caller's indexed corpus.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	user, ok := s.requireUser(w, r, req.UserID)
	if !ok {
		return
	}

	result, err := s.query.Answer(r.Context(), *user, req.Query, req.ConversationID)
	if err != nil {
		s.logger.Error("query failed", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process query")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type updateRequest struct {
	UserID  string `json:"user_id"`
	FeedURL string `json:"feed_url"`
}

type updateResponse struct {
	Status string `json:"status"`
}

// handleUpdate re-syncs the caller's corpus in the background. A new
// feed_url, if given, is stored first and used for this and future
// syncs.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, ok := s.requireUser(w, r, req.UserID)
	if !ok {
		return
	}

	if req.FeedURL != "" && req.FeedURL != user.FeedURL {
		if err := s.users.UpdateFeedURL(r.Context(), user.ID, req.FeedURL); err != nil {
			s.logger.Error("update feed url failed", "user", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update feed url")
			return
		}
		user.FeedURL = req.FeedURL
	}

	u := *user
	s.tasks.Go("sync "+u.ID, func(ctx context.Context) error {
		_, err := s.sync.Sync(ctx, u)
		return err
	})

	writeJSON(w, http.StatusAccepted, updateResponse{Status: "update started"})
}

// handleDelete purges a user and everything derived from their feed.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.purge.Purge(r.Context(), user.ID); err != nil {
		s.logger.Error("purge failed", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
