package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteassist/siteassist/internal/blob"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

func TestPurge_RemovesEverything(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore(testUser())
	blobs := blob.NewMemory()
	index := vectorstore.NewMemory()

	require.NoError(t, blobs.Save(ctx, "user-1", blob.KindPosts, []byte("[]")))
	require.NoError(t, index.Upsert(ctx, "user-1", []vectorstore.Entry{{ID: "1_0", Vector: []float32{1}}}))

	svc := NewPurgeService(users, blobs, index)
	require.NoError(t, svc.Purge(ctx, "user-1"))

	assert.Equal(t, []string{"user-1"}, users.deleted)

	exists, err := blobs.Exists(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, exists[blob.KindPosts])
	assert.Equal(t, 0, index.Count("user-1"))
}

func TestPurge_IsIdempotentOnDerivedState(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore(testUser())
	svc := NewPurgeService(users, blob.NewMemory(), vectorstore.NewMemory())

	require.NoError(t, svc.Purge(ctx, "user-1"))
}
