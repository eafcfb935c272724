package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/siteassist/siteassist/internal/llm"
	"github.com/siteassist/siteassist/internal/models"
)

// fakeFetcher serves canned documents and counts calls.
type fakeFetcher struct {
	docs  []models.Document
	err   error
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]models.Document, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

// fakeEmbedder derives a deterministic vector from the text so equal
// texts land on identical vectors.
type fakeEmbedder struct {
	batches atomic.Int32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return textVector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batches.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = textVector(text)
	}
	return vectors, nil
}

func textVector(text string) []float32 {
	var sum int
	for _, b := range []byte(text) {
		sum += int(b)
	}
	return []float32{
		1,
		float32(len(text)%17) / 17,
		float32(sum%31) / 31,
	}
}

// fakeGenerator records the prompts and histories it was given.
type fakeGenerator struct {
	response  string
	err       error
	prompts   []string
	histories [][]llm.ChatMessage
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string, history []llm.ChatMessage, _ int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.histories = append(f.histories, history)
	if f.err != nil {
		return "", f.err
	}
	if f.response != "" {
		return f.response, nil
	}
	return fmt.Sprintf("answer %d", len(f.prompts)), nil
}

// fakeUserStore is a map-backed UserStore.
type fakeUserStore struct {
	users   map[string]models.User
	deleted []string
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (f *fakeUserStore) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return &u, nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id string) error {
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}
