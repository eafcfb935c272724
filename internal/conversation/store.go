// Package conversation keeps bounded in-memory per-conversation turn
// history. Entries live only for the process lifetime.
package conversation

import (
	"log/slog"
	"sync"
)

// Role labels who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation, append-only and ordered.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Store holds conversation histories with a hard cap on the number of
// live conversations. It is an injected component, not process-global
// state, so callers and tests own its lifecycle.
//
// Eviction removes the conversation whose id sorts smallest, matching
// the behavior this service has always had. That is not LRU: a busy
// conversation with a small id is evicted before an idle one with a
// larger id.
type Store struct {
	mu               sync.Mutex
	maxConversations int
	conversations    map[string][]Turn
}

// NewStore creates a store capped at maxConversations live
// conversations. A cap of zero or less means unbounded.
func NewStore(maxConversations int) *Store {
	return &Store{
		maxConversations: maxConversations,
		conversations:    make(map[string][]Turn),
	}
}

// Append adds a turn to a conversation, creating it if needed, then
// enforces the cap. Appends to the same id are serialized by the store
// lock so concurrent turns are never interleaved or lost.
func (s *Store) Append(conversationID string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conversationID] = append(s.conversations[conversationID], Turn{
		Role:    role,
		Content: content,
	})
	s.evictLocked()
}

// Get returns a copy of the conversation's turns in append order, or an
// empty slice for an unknown id.
func (s *Store) Get(conversationID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.conversations[conversationID]
	cp := make([]Turn, len(turns))
	copy(cp, turns)
	return cp
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// evictLocked removes the smallest-id conversation while over capacity.
func (s *Store) evictLocked() {
	if s.maxConversations <= 0 {
		return
	}
	for len(s.conversations) > s.maxConversations {
		smallest := ""
		for id := range s.conversations {
			if smallest == "" || id < smallest {
				smallest = id
			}
		}
		delete(s.conversations, smallest)
		slog.Debug("evicted conversation", "conversation", smallest)
	}
}
