// Package main provides the entry point for the siteassist API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/siteassist/siteassist/internal/blob"
	"github.com/siteassist/siteassist/internal/config"
	"github.com/siteassist/siteassist/internal/conversation"
	"github.com/siteassist/siteassist/internal/db"
	"github.com/siteassist/siteassist/internal/feed"
	"github.com/siteassist/siteassist/internal/llm"
	"github.com/siteassist/siteassist/internal/metrics"
	"github.com/siteassist/siteassist/internal/parser"
	"github.com/siteassist/siteassist/internal/server"
	"github.com/siteassist/siteassist/internal/service"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

const version = "0.1.0"

func main() {
	// .env is optional; the environment wins either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	logger.Info("siteassist starting",
		"version", version,
		"port", cfg.Port,
		"embed_model", cfg.EmbedModel,
		"llm_model", cfg.LLMModel,
	)

	// Cancel on shutdown signals; Run drains in-flight work itself
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	dbClient, err := db.NewClient(connectCtx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
	}, logger)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	blobs, err := blob.NewS3(ctx, cfg.S3Bucket, cfg.AWSRegion)
	if err != nil {
		logger.Error("failed to create blob store", "error", err)
		os.Exit(1)
	}

	index := vectorstore.NewQdrant(vectorstore.QdrantConfig{
		URL:       cfg.QdrantURL,
		APIKey:    cfg.QdrantAPIKey,
		Dimension: cfg.EmbedDimension,
	})

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}

	model, err := llm.NewModel(cfg)
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}

	feedClient := feed.NewClient(feed.Config{
		PageSize:    cfg.FetchPageSize,
		Timeout:     cfg.FetchTimeout,
		MaxAttempts: cfg.FetchMaxAttempts,
		RateLimit:   cfg.FetchRateLimit,
	})

	collector := metrics.NewCollector()
	convs := conversation.NewStore(cfg.MaxConversations)

	chunkCfg := parser.ChunkConfig{
		MaxChunkSize:     cfg.MaxChunkSize,
		OverlapSize:      cfg.ChunkOverlap,
		OverlapSentences: cfg.OverlapSentences,
	}

	syncSvc := service.NewSyncService(feedClient, embedder, blobs, index, chunkCfg, collector)
	querySvc := service.NewQueryService(embedder, index, model, convs, service.QueryConfig{
		TopK:             cfg.SearchTopK,
		MaxContextChunks: cfg.MaxContextChunks,
		HistoryWindow:    cfg.HistoryWindow,
		MaxTokens:        cfg.MaxTokens,
	}, collector)
	purgeSvc := service.NewPurgeService(dbClient, blobs, index)

	srv := server.New(cfg.Port, dbClient, syncSvc, querySvc, purgeSvc, collector, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
