// Package blob stores each user's cached corpus snapshots as opaque
// blobs keyed by kind.
package blob

import (
	"context"
	"errors"
)

// Kind names one of the per-user blobs.
type Kind string

const (
	// KindPosts is the raw fetched document corpus.
	KindPosts Kind = "posts"
	// KindChunks is the chunked corpus derived from posts.
	KindChunks Kind = "chunks"
)

// Kinds lists every blob kind a user can own.
var Kinds = []Kind{KindPosts, KindChunks}

// ErrNotFound indicates the blob does not exist. This is a normal state
// for a first-time user, not a failure.
var ErrNotFound = errors.New("blob not found")

// Store persists per-user blobs.
type Store interface {
	// Save writes a blob, replacing any previous content.
	Save(ctx context.Context, userID string, kind Kind, data []byte) error

	// Load reads a blob. Returns ErrNotFound if it has never been saved.
	Load(ctx context.Context, userID string, kind Kind) ([]byte, error)

	// Exists reports which blob kinds the user has.
	Exists(ctx context.Context, userID string) (map[Kind]bool, error)

	// DeleteAll removes every blob the user owns. Idempotent.
	DeleteAll(ctx context.Context, userID string) error
}
