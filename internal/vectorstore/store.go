// Package vectorstore indexes passage embeddings per user and serves
// nearest-neighbor search over them.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrIndexUnavailable indicates the vector store rejected or failed an
// operation. Fatal to the enclosing sync or query.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// DefaultBatchSize bounds how many entries a single upsert call writes.
const DefaultBatchSize = 100

// Entry is one passage vector with its retrieval metadata.
type Entry struct {
	ID     string
	Vector []float32
	Text   string
	Title  string
	URL    string
	PostID int64
}

// SearchHit is one search result. Distance is the store's distance
// metric: smaller means closer. Hits are returned distance-ascending.
type SearchHit struct {
	ID       string
	Text     string
	Title    string
	URL      string
	PostID   int64
	Distance float64
}

// Store is the per-user vector index.
type Store interface {
	// EnsureCollection creates the user's collection if it does not
	// exist. Idempotent; never errors on "already exists".
	EnsureCollection(ctx context.Context, userID string) error

	// Upsert writes entries into the user's collection in batches of at
	// most DefaultBatchSize. Re-upserting an ID replaces the prior
	// vector, text and metadata.
	Upsert(ctx context.Context, userID string, entries []Entry) error

	// Search returns up to topK hits ordered by ascending distance.
	Search(ctx context.Context, userID string, vector []float32, topK int) ([]SearchHit, error)

	// DeleteCollection removes the user's collection. Deleting a
	// non-existent collection is not an error.
	DeleteCollection(ctx context.Context, userID string) error
}

// EntryID derives the index key for a chunk: "{documentID}_{ordinal}".
// Upserts are idempotent on this key.
func EntryID(documentID int64, ordinal int) string {
	return fmt.Sprintf("%d_%d", documentID, ordinal)
}

const (
	minNameLen = 3
	maxNameLen = 63
)

// CollectionName derives the collection identifier for a user. Pure and
// deterministic: the name is the sole address of a user's index, so the
// same user ID must always map to the same name. The result matches
// ^[A-Za-z0-9_-]{3,63}$ and starts and ends with an alphanumeric rune.
func CollectionName(userID string) string {
	name := sanitize("user_" + userID)
	return name
}

func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isAlnum(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()

	if s == "" || !isAlnum(rune(s[0])) {
		s = "user" + s
	}
	if len(s) < minNameLen {
		s += "_collection"
	}
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	if !isAlnum(rune(s[len(s)-1])) {
		if len(s) == maxNameLen {
			s = s[:maxNameLen-1]
		}
		s += "0"
	}
	return s
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
