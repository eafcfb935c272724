package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteassist/siteassist/internal/blob"
	"github.com/siteassist/siteassist/internal/metrics"
	"github.com/siteassist/siteassist/internal/models"
	"github.com/siteassist/siteassist/internal/parser"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

func syncDoc(id int64, modified, text string) models.Document {
	return models.Document{
		ID:       id,
		Title:    models.RenderedField{Rendered: fmt.Sprintf("Post %d", id)},
		Content:  models.RenderedField{Rendered: "<p>" + text + "</p>"},
		Modified: modified,
		URL:      fmt.Sprintf("https://example.com/%d", id),
	}
}

func testUser() models.User {
	return models.User{ID: "user-1", FeedURL: "https://example.com/feed"}
}

func newSyncFixture(docs ...models.Document) (*SyncService, *fakeFetcher, *blob.Memory, *vectorstore.Memory) {
	fetcher := &fakeFetcher{docs: docs}
	blobs := blob.NewMemory()
	index := vectorstore.NewMemory()
	svc := NewSyncService(fetcher, &fakeEmbedder{}, blobs, index, parser.DefaultChunkConfig(), metrics.NewCollector())
	return svc, fetcher, blobs, index
}

func TestSync_InitializesNewUser(t *testing.T) {
	ctx := context.Background()
	svc, _, blobs, index := newSyncFixture(
		syncDoc(1, "2026-01-01T00:00:00", "First post content."),
		syncDoc(2, "2026-01-02T00:00:00", "Second post content."),
	)

	result, err := svc.Sync(ctx, testUser())
	require.NoError(t, err)

	assert.Equal(t, 2, result.DocumentsTotal)
	assert.Equal(t, 2, result.DocumentsNew)
	assert.Equal(t, 2, result.ChunksTotal)
	assert.Equal(t, 2, result.ChunksNew)

	exists, err := blobs.Exists(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, exists[blob.KindPosts])
	assert.True(t, exists[blob.KindChunks])
	assert.Equal(t, 2, index.Count("user-1"))
}

func TestSync_EmptyFeedOnFirstSyncFails(t *testing.T) {
	svc, _, blobs, _ := newSyncFixture()

	_, err := svc.Sync(context.Background(), testUser())
	require.ErrorIs(t, err, ErrNoContent)

	exists, err := blobs.Exists(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, exists[blob.KindPosts], "failed initialize must not leave state behind")
}

func TestSync_SecondRunWithUnchangedFeedWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, _, index := newSyncFixture(
		syncDoc(1, "2026-01-01T00:00:00", "First post content."),
	)

	_, err := svc.Sync(ctx, testUser())
	require.NoError(t, err)

	result, err := svc.Sync(ctx, testUser())
	require.NoError(t, err)

	assert.Equal(t, 1, result.DocumentsTotal)
	assert.Equal(t, 0, result.DocumentsNew)
	assert.Equal(t, 0, result.ChunksNew)
	assert.Equal(t, 1, index.Count("user-1"))
}

func TestSync_UpdatePicksUpNewAndRevisedDocuments(t *testing.T) {
	ctx := context.Background()
	svc, fetcher, _, index := newSyncFixture(
		syncDoc(1, "2026-01-01T00:00:00", "Original content of post one."),
	)

	_, err := svc.Sync(ctx, testUser())
	require.NoError(t, err)
	require.Equal(t, 1, index.Count("user-1"))

	// Post 1 is revised, post 2 is brand new.
	fetcher.docs = []models.Document{
		syncDoc(1, "2026-02-01T00:00:00", "Revised content of post one."),
		syncDoc(2, "2026-02-02T00:00:00", "Content of post two."),
	}

	result, err := svc.Sync(ctx, testUser())
	require.NoError(t, err)

	assert.Equal(t, 2, result.DocumentsNew)
	assert.Equal(t, 2, result.ChunksNew)
	// The revised post re-upserts under the same "1_0" key; only the
	// truly new post adds an entry.
	assert.Equal(t, 2, index.Count("user-1"))
}

func TestSync_EmbeddingFailureAbortsBeforeIndexing(t *testing.T) {
	fetcher := &fakeFetcher{docs: []models.Document{
		syncDoc(1, "2026-01-01T00:00:00", "Some content."),
	}}
	embedder := &fakeEmbedder{err: fmt.Errorf("model offline")}
	index := vectorstore.NewMemory()
	svc := NewSyncService(fetcher, embedder, blob.NewMemory(), index, parser.DefaultChunkConfig(), nil)

	_, err := svc.Sync(context.Background(), testUser())
	require.Error(t, err)
	assert.Equal(t, 0, index.Count("user-1"), "no partial vectors may reach the index")
}

func TestSync_FetchErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("connection refused")}
	svc := NewSyncService(fetcher, &fakeEmbedder{}, blob.NewMemory(), vectorstore.NewMemory(), parser.DefaultChunkConfig(), nil)

	_, err := svc.Sync(context.Background(), testUser())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch feed")
}
