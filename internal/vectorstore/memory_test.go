package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SearchOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureCollection(ctx, "alice"))

	entries := []Entry{
		{ID: EntryID(1, 0), Vector: []float32{1, 0, 0}, Text: "exact", PostID: 1},
		{ID: EntryID(1, 1), Vector: []float32{0.9, 0.1, 0}, Text: "close", PostID: 1},
		{ID: EntryID(2, 0), Vector: []float32{0, 1, 0}, Text: "orthogonal", PostID: 2},
		{ID: EntryID(3, 0), Vector: []float32{-1, 0, 0}, Text: "opposite", PostID: 3},
	}
	require.NoError(t, store.Upsert(ctx, "alice", entries))

	hits, err := store.Search(ctx, "alice", []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	assert.Equal(t, "exact", hits[0].Text)
	assert.InDelta(t, 0, hits[0].Distance, 1e-9)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance)
	}
	assert.Equal(t, "opposite", hits[3].Text)
}

func TestMemory_SearchHonorsTopK(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	var entries []Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, Entry{
			ID:     EntryID(int64(i), 0),
			Vector: []float32{float32(i), 1},
		})
	}
	require.NoError(t, store.Upsert(ctx, "alice", entries))

	hits, err := store.Search(ctx, "alice", []float32{1, 1}, 3)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestMemory_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	entry := Entry{ID: EntryID(1, 0), Vector: []float32{1, 0}, Text: "first"}
	require.NoError(t, store.Upsert(ctx, "alice", []Entry{entry}))
	require.NoError(t, store.Upsert(ctx, "alice", []Entry{entry}))
	assert.Equal(t, 1, store.Count("alice"))

	// Re-upserting the same ID replaces, never duplicates.
	entry.Text = "second"
	require.NoError(t, store.Upsert(ctx, "alice", []Entry{entry}))
	assert.Equal(t, 1, store.Count("alice"))

	hits, err := store.Search(ctx, "alice", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "second", hits[0].Text)
}

func TestMemory_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Upsert(ctx, "alice", []Entry{{ID: "1_0", Vector: []float32{1, 0}, Text: "alice's"}}))
	require.NoError(t, store.Upsert(ctx, "bob", []Entry{{ID: "1_0", Vector: []float32{1, 0}, Text: "bob's"}}))

	hits, err := store.Search(ctx, "alice", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alice's", hits[0].Text)
}

func TestMemory_DeleteCollectionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Upsert(ctx, "alice", []Entry{{ID: "1_0", Vector: []float32{1, 0}}}))
	require.NoError(t, store.DeleteCollection(ctx, "alice"))
	require.NoError(t, store.DeleteCollection(ctx, "alice"))
	assert.Equal(t, 0, store.Count("alice"))

	hits, err := store.Search(ctx, "alice", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
