package service

import (
	"fmt"
	"strings"

	"github.com/siteassist/siteassist/internal/conversation"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

// NoContextSentinel is substituted for the context section when search
// returns nothing. The model is told so instead of receiving an empty
// prompt section.
const NoContextSentinel = "No specific content found for this query."

// ContextItem is one retrieved passage selected for the prompt.
type ContextItem struct {
	Content   string
	Title     string
	URL       string
	Relevance float64
}

// BuildContext selects the closest maxChunks hits and scores each one.
// Relevance is 1/(1+distance): exactly 1.0 for a perfect match, falling
// toward zero as distance grows, so item order always matches hit order.
func BuildContext(hits []vectorstore.SearchHit, maxChunks int) []ContextItem {
	if maxChunks < 0 {
		maxChunks = 0
	}
	if maxChunks > len(hits) {
		maxChunks = len(hits)
	}

	items := make([]ContextItem, 0, maxChunks)
	for _, hit := range hits[:maxChunks] {
		items = append(items, ContextItem{
			Content:   hit.Text,
			Title:     hit.Title,
			URL:       hit.URL,
			Relevance: 1 / (1 + hit.Distance),
		})
	}
	return items
}

// Augment assembles the final prompt: retrieved context, then the last
// historyWindow turns of the conversation, then the query itself.
// Deterministic for the same inputs.
func Augment(query string, items []ContextItem, history []conversation.Turn, historyWindow int) string {
	var b strings.Builder

	b.WriteString("Context from website:\n")
	if len(items) == 0 {
		b.WriteString(NoContextSentinel)
	} else {
		for i, item := range items {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "Title: %s\nContent: %s\nSource: %s", item.Title, item.Content, item.URL)
		}
	}
	b.WriteString("\n")

	if len(history) > 0 {
		start := len(history) - historyWindow
		if start < 0 {
			start = 0
		}
		b.WriteString("\nPrevious conversation:\n")
		for _, turn := range history[start:] {
			label := "User"
			if turn.Role == conversation.RoleAssistant {
				label = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, turn.Content)
		}
	}

	b.WriteString("\nCurrent query: ")
	b.WriteString(query)
	return b.String()
}
