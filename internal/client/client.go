// Package client provides an HTTP client for the siteassist server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/siteassist/siteassist/internal/metrics"
	"github.com/siteassist/siteassist/internal/service"
)

// Client talks to a running siteassist server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client. If baseURL is empty, uses the SITEASSIST_SERVER_URL
// env var or defaults to localhost:8080. Timeout can be configured via
// SITEASSIST_CLIENT_TIMEOUT (default 10m; syncs can be slow).
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("SITEASSIST_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	timeout := 10 * time.Minute
	if t := os.Getenv("SITEASSIST_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	FeedURL string `json:"feed_url"`
}

// RegisterResult is the server's response to a registration.
type RegisterResult struct {
	UserID    string              `json:"user_id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	FeedURL   string              `json:"feed_url"`
	APIKey    string              `json:"api_key"`
	CreatedAt time.Time           `json:"created_at"`
	Sync      *service.SyncResult `json:"sync"`
}

// Register creates a user and builds their initial index.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	var result RegisterResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/register", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Query asks a question. Pass an empty conversationID to start a new
// conversation; the returned id continues it.
func (c *Client) Query(ctx context.Context, userID, query, conversationID string) (*service.AnswerResult, error) {
	payload := map[string]string{
		"user_id":         userID,
		"query":           query,
		"conversation_id": conversationID,
	}
	var result service.AnswerResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/query", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update triggers a background re-sync. A non-empty feedURL also
// changes the stored feed address.
func (c *Client) Update(ctx context.Context, userID, feedURL string) error {
	payload := map[string]string{
		"user_id":  userID,
		"feed_url": feedURL,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/update", payload, nil)
}

// Delete purges a user and all their content.
func (c *Client) Delete(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/user/"+userID, nil, nil)
}

// Stats fetches the server's runtime statistics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, errResp.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
