package vectorstore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// QdrantConfig configures the Qdrant-backed store.
type QdrantConfig struct {
	URL       string
	APIKey    string
	Dimension int
	Timeout   time.Duration
	BatchSize int
}

// Qdrant is a minimal REST client to Qdrant. One collection per user,
// cosine distance. Search results expose cosine distance (1 - score)
// so smaller is closer.
type Qdrant struct {
	url       string
	apiKey    string
	dimension int
	batchSize int
	client    *http.Client
}

// Compile-time check that Qdrant implements Store.
var _ Store = (*Qdrant)(nil)

// NewQdrant creates a Qdrant store client.
func NewQdrant(cfg QdrantConfig) *Qdrant {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Qdrant{
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		dimension: cfg.Dimension,
		batchSize: cfg.BatchSize,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// EnsureCollection creates the user's collection if missing. Qdrant
// answers 200 for a fresh create and 409 when the collection already
// exists; both count as success.
func (q *Qdrant) EnsureCollection(ctx context.Context, userID string) error {
	name := CollectionName(userID)
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	status, err := q.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", q.url, name), body, nil)
	if err != nil {
		return fmt.Errorf("%w: create collection %s: %v", ErrIndexUnavailable, name, err)
	}
	if status == http.StatusConflict {
		return nil
	}
	if status >= 300 {
		return fmt.Errorf("%w: create collection %s: status %d", ErrIndexUnavailable, name, status)
	}
	return nil
}

type qdrantPoint struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Upsert writes entries in bounded batches. The logical entry ID is kept
// in the payload; the point ID is a stable hash of it, so re-upserting
// the same key replaces the prior point.
func (q *Qdrant) Upsert(ctx context.Context, userID string, entries []Entry) error {
	name := CollectionName(userID)

	for start := 0; start < len(entries); start += q.batchSize {
		end := start + q.batchSize
		if end > len(entries) {
			end = len(entries)
		}

		points := make([]qdrantPoint, 0, end-start)
		for _, e := range entries[start:end] {
			points = append(points, qdrantPoint{
				ID:     pointID(e.ID),
				Vector: e.Vector,
				Payload: map[string]any{
					"entry_id": e.ID,
					"text":     e.Text,
					"title":    e.Title,
					"url":      e.URL,
					"post_id":  e.PostID,
				},
			})
		}

		body := map[string]any{"points": points}
		status, err := q.do(ctx, http.MethodPut,
			fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, name), body, nil)
		if err != nil {
			return fmt.Errorf("%w: upsert batch: %v", ErrIndexUnavailable, err)
		}
		if status >= 300 {
			return fmt.Errorf("%w: upsert batch: status %d", ErrIndexUnavailable, status)
		}
		slog.Debug("upserted batch", "collection", name, "points", len(points))
	}

	return nil
}

// Search returns the topK nearest entries by cosine distance, ascending.
// Qdrant returns similarity score descending; distance is 1 - score.
func (q *Qdrant) Search(ctx context.Context, userID string, vector []float32, topK int) ([]SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}
	name := CollectionName(userID)

	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	status, err := q.do(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", q.url, name), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrIndexUnavailable, err)
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: search: status %d", ErrIndexUnavailable, status)
	}

	hits := make([]SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := SearchHit{Distance: 1 - r.Score}
		if v, ok := r.Payload["entry_id"].(string); ok {
			hit.ID = v
		}
		if v, ok := r.Payload["text"].(string); ok {
			hit.Text = v
		}
		if v, ok := r.Payload["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := r.Payload["url"].(string); ok {
			hit.URL = v
		}
		if v, ok := r.Payload["post_id"].(float64); ok {
			hit.PostID = int64(v)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DeleteCollection drops the user's collection. A 404 means it never
// existed, which is fine.
func (q *Qdrant) DeleteCollection(ctx context.Context, userID string) error {
	name := CollectionName(userID)
	status, err := q.do(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", q.url, name), nil, nil)
	if err != nil {
		return fmt.Errorf("%w: delete collection %s: %v", ErrIndexUnavailable, name, err)
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status >= 300 {
		return fmt.Errorf("%w: delete collection %s: status %d", ErrIndexUnavailable, name, status)
	}
	return nil
}

// pointID hashes a logical entry key to the numeric point ID Qdrant
// requires. Stable across calls, so upserts stay idempotent per key.
func pointID(entryID string) uint64 {
	sum := sha1.Sum([]byte(entryID))
	return binary.BigEndian.Uint64(sum[:8])
}

func (q *Qdrant) do(ctx context.Context, method, url string, body any, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
