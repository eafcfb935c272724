package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/siteassist/siteassist/internal/conversation"
	"github.com/siteassist/siteassist/internal/llm"
	"github.com/siteassist/siteassist/internal/metrics"
	"github.com/siteassist/siteassist/internal/models"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

// QueryConfig tunes the retrieval and prompting pipeline.
type QueryConfig struct {
	// TopK: how many neighbors to request from the index.
	TopK int
	// MaxContextChunks: how many of them make it into the prompt.
	MaxContextChunks int
	// HistoryWindow: how many prior turns the prompt replays.
	HistoryWindow int
	// MaxTokens: generation budget.
	MaxTokens int
}

// DefaultQueryConfig returns the pipeline defaults.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:             5,
		MaxContextChunks: 3,
		HistoryWindow:    4,
		MaxTokens:        1000,
	}
}

// QueryService answers questions against a user's indexed corpus.
type QueryService struct {
	embedder  Embedder
	index     vectorstore.Store
	generator Generator
	convs     *conversation.Store
	cfg       QueryConfig
	metrics   *metrics.Collector
}

// NewQueryService creates a query service.
func NewQueryService(embedder Embedder, index vectorstore.Store, generator Generator, convs *conversation.Store, cfg QueryConfig, collector *metrics.Collector) *QueryService {
	return &QueryService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		convs:     convs,
		cfg:       cfg,
		metrics:   collector,
	}
}

// AnswerResult is one generated answer with its conversation handle.
type AnswerResult struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// Answer runs the query pipeline: embed the question, search the user's
// collection, build a context from the closest hits, augment the prompt
// with context and recent history, generate, then record both turns.
// A query that matches nothing still generates an answer; the model is
// told no content was found. An empty conversationID starts a new
// conversation.
func (s *QueryService) Answer(ctx context.Context, user models.User, query, conversationID string) (*AnswerResult, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	slog.Info("processing query", "user", user.ID, "conversation", conversationID)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	searchStart := time.Now()
	hits, err := s.index.Search(ctx, user.ID, vector, s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordTiming(metrics.OpVectorSearch, time.Since(searchStart))
	}

	items := BuildContext(hits, s.cfg.MaxContextChunks)
	if len(items) == 0 {
		slog.Warn("no relevant context found", "user", user.ID, "conversation", conversationID)
	}

	history := s.convs.Get(conversationID)
	prompt := Augment(query, items, history, s.cfg.HistoryWindow)
	recent := recentMessages(history, s.cfg.HistoryWindow)

	genStart := time.Now()
	response, err := s.generator.Complete(ctx, prompt, recent, s.cfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordTiming(metrics.OpGeneration, time.Since(genStart))
	}

	s.convs.Append(conversationID, conversation.RoleUser, query)
	s.convs.Append(conversationID, conversation.RoleAssistant, response)

	return &AnswerResult{
		Response:       response,
		ConversationID: conversationID,
	}, nil
}

// recentMessages converts the last window turns into chat messages so
// the model replays the same exchange the prompt renders.
func recentMessages(history []conversation.Turn, window int) []llm.ChatMessage {
	if window <= 0 || len(history) == 0 {
		return nil
	}
	start := len(history) - window
	if start < 0 {
		start = 0
	}
	messages := make([]llm.ChatMessage, 0, len(history)-start)
	for _, turn := range history[start:] {
		messages = append(messages, llm.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}
