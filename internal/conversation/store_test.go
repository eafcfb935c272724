package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndGet(t *testing.T) {
	store := NewStore(10)

	store.Append("conv-1", RoleUser, "hello")
	store.Append("conv-1", RoleAssistant, "hi there")
	store.Append("conv-1", RoleUser, "how are you?")

	turns := store.Get("conv-1")
	require.Len(t, turns, 3)
	assert.Equal(t, Turn{RoleUser, "hello"}, turns[0])
	assert.Equal(t, Turn{RoleAssistant, "hi there"}, turns[1])
	assert.Equal(t, Turn{RoleUser, "how are you?"}, turns[2])
}

func TestStore_UnknownConversationIsEmpty(t *testing.T) {
	store := NewStore(10)
	assert.Empty(t, store.Get("nope"))
}

func TestStore_GetReturnsACopy(t *testing.T) {
	store := NewStore(10)
	store.Append("conv-1", RoleUser, "original")

	turns := store.Get("conv-1")
	turns[0].Content = "mutated"

	assert.Equal(t, "original", store.Get("conv-1")[0].Content)
}

func TestStore_EvictsSmallestID(t *testing.T) {
	store := NewStore(3)

	store.Append("b", RoleUser, "b1")
	store.Append("d", RoleUser, "d1")
	store.Append("a", RoleUser, "a1")
	require.Equal(t, 3, store.Len())

	// "a" sorts smallest, so it goes first even though it is the most
	// recently touched conversation.
	store.Append("c", RoleUser, "c1")
	assert.Equal(t, 3, store.Len())
	assert.Empty(t, store.Get("a"))
	assert.NotEmpty(t, store.Get("b"))
	assert.NotEmpty(t, store.Get("c"))
	assert.NotEmpty(t, store.Get("d"))
}

func TestStore_UnboundedWhenCapIsZero(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < 100; i++ {
		store.Append(fmt.Sprintf("conv-%03d", i), RoleUser, "x")
	}
	assert.Equal(t, 100, store.Len())
}

func TestStore_ConcurrentAppendsAreNotLost(t *testing.T) {
	store := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Append("shared", RoleUser, fmt.Sprintf("%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Get("shared"), 20*50)
}
