package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/siteassist/siteassist/internal/blob"
	"github.com/siteassist/siteassist/internal/feed"
	"github.com/siteassist/siteassist/internal/metrics"
	"github.com/siteassist/siteassist/internal/models"
	"github.com/siteassist/siteassist/internal/parser"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

// ErrNoContent indicates the feed published nothing on first sync, so
// there is no corpus to build an index from.
var ErrNoContent = errors.New("feed has no published content")

// SyncService builds and maintains a user's searchable corpus: fetch
// the feed, diff against the cached snapshot, chunk what is new, embed
// it and upsert it into the user's vector collection.
type SyncService struct {
	fetcher  Fetcher
	embedder Embedder
	blobs    blob.Store
	index    vectorstore.Store
	chunkCfg parser.ChunkConfig
	metrics  *metrics.Collector
}

// NewSyncService creates a sync service.
func NewSyncService(fetcher Fetcher, embedder Embedder, blobs blob.Store, index vectorstore.Store, chunkCfg parser.ChunkConfig, collector *metrics.Collector) *SyncService {
	return &SyncService{
		fetcher:  fetcher,
		embedder: embedder,
		blobs:    blobs,
		index:    index,
		chunkCfg: chunkCfg,
		metrics:  collector,
	}
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	DocumentsTotal int `json:"documents_total"`
	DocumentsNew   int `json:"documents_new"`
	ChunksTotal    int `json:"chunks_total"`
	ChunksNew      int `json:"chunks_new"`
}

// Sync runs the right pipeline for the user's state: a full initialize
// when no cached corpus exists yet, an incremental update otherwise.
func (s *SyncService) Sync(ctx context.Context, user models.User) (*SyncResult, error) {
	start := time.Now()

	exists, err := s.blobs.Exists(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("check user state: %w", err)
	}

	var result *SyncResult
	if exists[blob.KindPosts] {
		result, err = s.update(ctx, user)
	} else {
		result, err = s.initialize(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordBatch(metrics.OpSync, time.Since(start), int64(result.DocumentsNew))
	}
	return result, nil
}

// initialize builds the corpus from scratch. An empty feed is an error
// here: a brand-new user with nothing to index has nothing to answer
// from either.
func (s *SyncService) initialize(ctx context.Context, user models.User) (*SyncResult, error) {
	slog.Info("initializing content", "user", user.ID, "feed", user.FeedURL)

	docs, err := s.fetchFeed(ctx, user.FeedURL)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoContent
	}

	chunked := parser.ChunkAll(docs, s.chunkCfg)

	if err := s.saveCorpus(ctx, user.ID, docs, chunked); err != nil {
		return nil, err
	}

	if err := s.index.EnsureCollection(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	indexed, err := s.indexChunks(ctx, user.ID, chunked)
	if err != nil {
		return nil, err
	}

	slog.Info("content initialized", "user", user.ID, "documents", len(docs), "chunks", indexed)
	return &SyncResult{
		DocumentsTotal: len(docs),
		DocumentsNew:   len(docs),
		ChunksTotal:    models.TotalChunks(chunked),
		ChunksNew:      indexed,
	}, nil
}

// update fetches the feed and processes only documents whose identity
// or revision is not in the cached snapshot. A feed with nothing new is
// a successful no-op. Superseded revisions stay in the snapshot; their
// index entries are replaced in place when a document's chunks keep
// their ordinals.
func (s *SyncService) update(ctx context.Context, user models.User) (*SyncResult, error) {
	slog.Info("updating content", "user", user.ID, "feed", user.FeedURL)

	cached, cachedChunks, err := s.loadCorpus(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	latest, err := s.fetchFeed(ctx, user.FeedURL)
	if err != nil {
		return nil, err
	}

	newDocs := feed.FindNew(latest, cached)
	if len(newDocs) == 0 {
		slog.Info("no new content", "user", user.ID, "documents", len(cached))
		return &SyncResult{
			DocumentsTotal: len(cached),
			ChunksTotal:    models.TotalChunks(cachedChunks),
		}, nil
	}

	newChunked := parser.ChunkAll(newDocs, s.chunkCfg)

	allDocs := append(cached, newDocs...)
	allChunked := append(cachedChunks, newChunked...)
	if err := s.saveCorpus(ctx, user.ID, allDocs, allChunked); err != nil {
		return nil, err
	}

	if err := s.index.EnsureCollection(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	indexed, err := s.indexChunks(ctx, user.ID, newChunked)
	if err != nil {
		return nil, err
	}

	slog.Info("content updated", "user", user.ID, "documents_new", len(newDocs), "chunks_new", indexed)
	return &SyncResult{
		DocumentsTotal: len(allDocs),
		DocumentsNew:   len(newDocs),
		ChunksTotal:    models.TotalChunks(allChunked),
		ChunksNew:      indexed,
	}, nil
}

func (s *SyncService) fetchFeed(ctx context.Context, feedURL string) ([]models.Document, error) {
	start := time.Now()
	docs, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordBatch(metrics.OpFeedFetch, time.Since(start), int64(len(docs)))
	}
	return docs, nil
}

// indexChunks embeds every chunk of the given documents and upserts
// them under their "{documentID}_{ordinal}" keys. Returns the number of
// entries written. Embedding failures abort before anything is written;
// no partial vectors reach the index.
func (s *SyncService) indexChunks(ctx context.Context, userID string, chunked []models.ChunkedDocument) (int, error) {
	texts := make([]string, 0, models.TotalChunks(chunked))
	entries := make([]vectorstore.Entry, 0, cap(texts))

	for _, doc := range chunked {
		for ordinal, chunk := range doc.Chunks {
			texts = append(texts, chunk)
			entries = append(entries, vectorstore.Entry{
				ID:     vectorstore.EntryID(doc.ID, ordinal),
				Text:   chunk,
				Title:  doc.Title,
				URL:    doc.URL,
				PostID: doc.ID,
			})
		}
	}
	if len(entries) == 0 {
		return 0, nil
	}

	start := time.Now()
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordBatch(metrics.OpEmbedding, time.Since(start), int64(len(texts)))
	}

	for i := range entries {
		entries[i].Vector = vectors[i]
	}

	if err := s.index.Upsert(ctx, userID, entries); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}
	return len(entries), nil
}

func (s *SyncService) saveCorpus(ctx context.Context, userID string, docs []models.Document, chunked []models.ChunkedDocument) error {
	postsData, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal posts: %w", err)
	}
	chunksData, err := json.Marshal(chunked)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}

	if err := s.blobs.Save(ctx, userID, blob.KindPosts, postsData); err != nil {
		return fmt.Errorf("save posts: %w", err)
	}
	if err := s.blobs.Save(ctx, userID, blob.KindChunks, chunksData); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	return nil
}

func (s *SyncService) loadCorpus(ctx context.Context, userID string) ([]models.Document, []models.ChunkedDocument, error) {
	postsData, err := s.blobs.Load(ctx, userID, blob.KindPosts)
	if err != nil {
		return nil, nil, fmt.Errorf("load posts: %w", err)
	}
	var docs []models.Document
	if err := json.Unmarshal(postsData, &docs); err != nil {
		return nil, nil, fmt.Errorf("unmarshal posts: %w", err)
	}

	var chunked []models.ChunkedDocument
	chunksData, err := s.blobs.Load(ctx, userID, blob.KindChunks)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			return nil, nil, fmt.Errorf("load chunks: %w", err)
		}
	} else if err := json.Unmarshal(chunksData, &chunked); err != nil {
		return nil, nil, fmt.Errorf("unmarshal chunks: %w", err)
	}

	return docs, chunked, nil
}
