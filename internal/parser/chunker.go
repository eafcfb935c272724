package parser

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/siteassist/siteassist/internal/models"
)

// ErrNoText indicates a document rendered to no usable text.
var ErrNoText = errors.New("document has no text content")

// ChunkConfig defines chunking parameters.
type ChunkConfig struct {
	// MaxChunkSize: maximum chunk length in characters. Only a single
	// sentence longer than this may exceed it; sentences are never
	// split mid-sentence.
	MaxChunkSize int
	// OverlapSize: character budget for the overlap seeded into the
	// next chunk when a chunk closes.
	OverlapSize int
	// OverlapSentences: how many trailing sentences of a closed chunk
	// are candidates for the overlap seed (1 or 2).
	OverlapSentences int
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:     1000,
		OverlapSize:      100,
		OverlapSentences: 2,
	}
}

// ChunkDocument strips a document's rendered content and splits it into
// overlapping passages. Deterministic: the same document always yields
// the same chunk sequence.
func ChunkDocument(doc models.Document, config ChunkConfig) (models.ChunkedDocument, error) {
	text := StripHTML(doc.Content.Rendered)
	if text == "" {
		return models.ChunkedDocument{}, ErrNoText
	}

	return models.ChunkedDocument{
		ID:     doc.ID,
		Title:  StripHTML(doc.Title.Rendered),
		URL:    doc.URL,
		Chunks: ChunkText(text, config),
	}, nil
}

// ChunkAll chunks a batch of documents. A document that fails to chunk
// is logged and skipped; it never aborts the batch.
func ChunkAll(docs []models.Document, config ChunkConfig) []models.ChunkedDocument {
	chunked := make([]models.ChunkedDocument, 0, len(docs))
	for _, doc := range docs {
		cd, err := ChunkDocument(doc, config)
		if err != nil {
			slog.Warn("skipping document", "document", doc.ID, "error", err)
			continue
		}
		chunked = append(chunked, cd)
	}
	return chunked
}

// ChunkText greedily packs sentences into chunks bounded by
// MaxChunkSize. When a chunk closes, the next one is seeded with the
// closed chunk's trailing sentences up to the overlap budget so that
// adjacent chunks share context. A single sentence longer than
// MaxChunkSize becomes its own chunk.
func ChunkText(text string, config ChunkConfig) []string {
	sentences := SplitSentences(text)

	var chunks []string
	var current []string
	curLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		// Oversized sentence: emit alone, unsplit.
		if len(sentence) > config.MaxChunkSize {
			flush()
			chunks = append(chunks, sentence)
			current = nil
			curLen = 0
			continue
		}

		if curLen > 0 && curLen+1+len(sentence) > config.MaxChunkSize {
			flush()
			seed := overlapSeed(current, config)
			seedLen := joinedLen(seed)
			if seedLen > 0 && seedLen+1+len(sentence) > config.MaxChunkSize {
				seed = nil
				seedLen = 0
			}
			current = append(seed, sentence)
			curLen = joinedLen(current)
			continue
		}

		current = append(current, sentence)
		curLen = joinedLen(current)
	}

	flush()
	return chunks
}

// overlapSeed picks the trailing sentences of a closed chunk that fit
// the overlap budget, newest first from the end, preserving order.
func overlapSeed(closed []string, config ChunkConfig) []string {
	if config.OverlapSize <= 0 || config.OverlapSentences <= 0 {
		return nil
	}

	take := config.OverlapSentences
	if take > len(closed) {
		take = len(closed)
	}

	var seed []string
	length := 0
	for i := len(closed) - 1; i >= len(closed)-take; i-- {
		s := closed[i]
		added := len(s)
		if len(seed) > 0 {
			added++ // joining space
		}
		if length+added > config.OverlapSize {
			break
		}
		seed = append([]string{s}, seed...)
		length += added
	}
	return seed
}

func joinedLen(parts []string) int {
	if len(parts) == 0 {
		return 0
	}
	n := len(parts) - 1
	for _, p := range parts {
		n += len(p)
	}
	return n
}

// SplitSentences splits text into sentences on ., ! and ? followed by
// whitespace or end of text.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead for space or end
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				// Not an abbreviation (simple heuristic)
				if i > 1 && unicode.IsUpper(runes[i-1]) {
					continue // Likely initialism like "U.S."
				}
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
