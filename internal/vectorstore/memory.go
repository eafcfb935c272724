package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process Store. Used by tests and local mode; search is
// an exact cosine-distance scan.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Entry
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]Entry)}
}

func (m *Memory) EnsureCollection(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := CollectionName(userID)
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = make(map[string]Entry)
	}
	return nil
}

func (m *Memory) Upsert(_ context.Context, userID string, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := CollectionName(userID)
	coll, ok := m.collections[name]
	if !ok {
		coll = make(map[string]Entry)
		m.collections[name] = coll
	}
	for _, e := range entries {
		coll[e.ID] = e
	}
	return nil
}

func (m *Memory) Search(_ context.Context, userID string, vector []float32, topK int) ([]SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collections[CollectionName(userID)]
	hits := make([]SearchHit, 0, len(coll))
	for _, e := range coll {
		hits = append(hits, SearchHit{
			ID:       e.ID,
			Text:     e.Text,
			Title:    e.Title,
			URL:      e.URL,
			PostID:   e.PostID,
			Distance: cosineDistance(vector, e.Vector),
		})
	}

	// Ascending distance; ties broken by ID so ordering is stable
	// within one call.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *Memory) DeleteCollection(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, CollectionName(userID))
	return nil
}

// Count returns the number of entries in a user's collection.
func (m *Memory) Count(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[CollectionName(userID)])
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
