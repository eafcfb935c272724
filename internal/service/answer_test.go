package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteassist/siteassist/internal/conversation"
	"github.com/siteassist/siteassist/internal/metrics"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

func newQueryFixture(generator *fakeGenerator) (*QueryService, *vectorstore.Memory, *conversation.Store) {
	index := vectorstore.NewMemory()
	convs := conversation.NewStore(100)
	svc := NewQueryService(&fakeEmbedder{}, index, generator, convs, DefaultQueryConfig(), metrics.NewCollector())
	return svc, index, convs
}

func seedIndex(t *testing.T, index *vectorstore.Memory, texts ...string) {
	t.Helper()
	entries := make([]vectorstore.Entry, len(texts))
	for i, text := range texts {
		entries[i] = vectorstore.Entry{
			ID:     vectorstore.EntryID(int64(i+1), 0),
			Vector: textVector(text),
			Text:   text,
			Title:  fmt.Sprintf("Post %d", i+1),
			URL:    fmt.Sprintf("https://example.com/%d", i+1),
			PostID: int64(i + 1),
		}
	}
	require.NoError(t, index.Upsert(context.Background(), "user-1", entries))
}

func TestAnswer_GeneratesFromRetrievedContext(t *testing.T) {
	generator := &fakeGenerator{response: "We sell bicycles."}
	svc, index, convs := newQueryFixture(generator)
	seedIndex(t, index, "We sell bicycles and do repairs.", "Opening hours are 9 to 5.")

	result, err := svc.Answer(context.Background(), testUser(), "What do you sell?", "")
	require.NoError(t, err)

	assert.Equal(t, "We sell bicycles.", result.Response)
	assert.NotEmpty(t, result.ConversationID)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "Current query: What do you sell?")
	assert.Contains(t, generator.prompts[0], "Content: ")
	assert.NotContains(t, generator.prompts[0], NoContextSentinel)

	turns := convs.Get(result.ConversationID)
	require.Len(t, turns, 2)
	assert.Equal(t, conversation.RoleUser, turns[0].Role)
	assert.Equal(t, "What do you sell?", turns[0].Content)
	assert.Equal(t, conversation.RoleAssistant, turns[1].Role)
	assert.Equal(t, "We sell bicycles.", turns[1].Content)
}

func TestAnswer_EmptyIndexUsesSentinelNotError(t *testing.T) {
	generator := &fakeGenerator{response: "I don't have enough information about that."}
	svc, _, _ := newQueryFixture(generator)

	result, err := svc.Answer(context.Background(), testUser(), "Anything?", "")
	require.NoError(t, err, "a query over an empty index must still answer")

	assert.NotEmpty(t, result.Response)
	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], NoContextSentinel)
}

func TestAnswer_ContinuesConversation(t *testing.T) {
	generator := &fakeGenerator{}
	svc, index, _ := newQueryFixture(generator)
	seedIndex(t, index, "We sell bicycles.")

	first, err := svc.Answer(context.Background(), testUser(), "What do you sell?", "")
	require.NoError(t, err)

	second, err := svc.Answer(context.Background(), testUser(), "Are they expensive?", first.ConversationID)
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	require.Len(t, generator.prompts, 2)
	assert.Contains(t, generator.prompts[1], "Previous conversation")
	assert.Contains(t, generator.prompts[1], "User: What do you sell?")

	// The first call has no history; the second replays both prior
	// turns as chat messages.
	require.Len(t, generator.histories, 2)
	assert.Empty(t, generator.histories[0])
	require.Len(t, generator.histories[1], 2)
	assert.Equal(t, "user", generator.histories[1][0].Role)
	assert.Equal(t, "What do you sell?", generator.histories[1][0].Content)
	assert.Equal(t, "assistant", generator.histories[1][1].Role)
	assert.Equal(t, "answer 1", generator.histories[1][1].Content)
}

func TestAnswer_HistoryWindowBoundsChatMessages(t *testing.T) {
	generator := &fakeGenerator{}
	svc, index, convs := newQueryFixture(generator)
	seedIndex(t, index, "We sell bicycles.")

	for i := 1; i <= 3; i++ {
		convs.Append("conv-1", conversation.RoleUser, fmt.Sprintf("question %d", i))
		convs.Append("conv-1", conversation.RoleAssistant, fmt.Sprintf("reply %d", i))
	}

	_, err := svc.Answer(context.Background(), testUser(), "And now?", "conv-1")
	require.NoError(t, err)

	// Six turns recorded, window of four: only the last two exchanges
	// reach the model.
	require.Len(t, generator.histories, 1)
	require.Len(t, generator.histories[0], 4)
	assert.Equal(t, "question 2", generator.histories[0][0].Content)
	assert.Equal(t, "reply 3", generator.histories[0][3].Content)
}

func TestAnswer_GenerationFailureIsFatal(t *testing.T) {
	generator := &fakeGenerator{err: fmt.Errorf("api unavailable")}
	svc, index, convs := newQueryFixture(generator)
	seedIndex(t, index, "Content.")

	result, err := svc.Answer(context.Background(), testUser(), "Question?", "conv-1")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, convs.Get("conv-1"), "failed generations record no turns")
}

func TestAnswer_EmbeddingFailureIsFatal(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("model offline")}
	svc := NewQueryService(embedder, vectorstore.NewMemory(), &fakeGenerator{}, conversation.NewStore(10), DefaultQueryConfig(), nil)

	_, err := svc.Answer(context.Background(), testUser(), "Question?", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}
