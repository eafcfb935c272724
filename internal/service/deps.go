// Package service implements the content sync and query pipelines on
// top of the feed, parser, llm, blob and vectorstore packages.
package service

import (
	"context"

	"github.com/siteassist/siteassist/internal/llm"
	"github.com/siteassist/siteassist/internal/models"
)

// Embedder turns text into vectors. Satisfied by *llm.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion for an augmented prompt. Satisfied by
// *llm.Model.
type Generator interface {
	Complete(ctx context.Context, prompt string, history []llm.ChatMessage, maxTokens int) (string, error)
}

// Fetcher retrieves the full published corpus behind a feed URL.
// Satisfied by *feed.Client.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]models.Document, error)
}

// UserStore is the slice of the user database the services need.
// Satisfied by *db.Client.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}
