package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/siteassist/siteassist/internal/models"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single sentence",
			input: "This is one sentence.",
			want:  []string{"This is one sentence."},
		},
		{
			name:  "multiple terminators",
			input: "First. Second! Third?",
			want:  []string{"First.", "Second!", "Third?"},
		},
		{
			name:  "trailing text without terminator",
			input: "Complete sentence. And a fragment",
			want:  []string{"Complete sentence.", "And a fragment"},
		},
		{
			name:  "period inside a token does not split",
			input: "Version 1.5 is out. It works.",
			want:  []string{"Version 1.5 is out.", "It works."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkText_RespectsMaxSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "This is sentence number %d with a bit of padding text. ", i)
	}

	config := ChunkConfig{MaxChunkSize: 200, OverlapSize: 50, OverlapSentences: 2}
	chunks := ChunkText(sb.String(), config)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > config.MaxChunkSize {
			t.Errorf("chunk[%d] length %d exceeds max %d", i, len(chunk), config.MaxChunkSize)
		}
	}
}

func TestChunkText_OversizedSentenceStandsAlone(t *testing.T) {
	long := strings.Repeat("word ", 60) // ~300 chars, no terminator until the end
	text := "Short one. " + strings.TrimSpace(long) + ". Short two."

	config := ChunkConfig{MaxChunkSize: 100, OverlapSize: 0, OverlapSentences: 0}
	chunks := ChunkText(text, config)

	found := false
	for _, chunk := range chunks {
		if len(chunk) > config.MaxChunkSize {
			found = true
			if strings.Contains(chunk, "Short one") || strings.Contains(chunk, "Short two") {
				t.Errorf("oversized sentence shares a chunk with neighbors: %q", chunk)
			}
		}
	}
	if !found {
		t.Error("expected the oversized sentence to be emitted as its own chunk")
	}
}

func TestChunkText_OverlapSharesTrailingSentence(t *testing.T) {
	text := "Alpha alpha alpha alpha. Beta beta beta beta. Gamma gamma gamma gamma. Delta delta delta delta."

	config := ChunkConfig{MaxChunkSize: 55, OverlapSize: 30, OverlapSentences: 1}
	chunks := ChunkText(text, config)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d: %q", len(chunks), chunks)
	}

	// Each later chunk should open with the previous chunk's last sentence.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		lastSentence := prev[strings.LastIndex(strings.TrimSuffix(prev, "."), ".")+1:]
		lastSentence = strings.TrimSpace(lastSentence)
		if lastSentence != "" && !strings.HasPrefix(chunks[i], lastSentence) {
			t.Errorf("chunk[%d] %q does not start with previous chunk's last sentence %q", i, chunks[i], lastSentence)
		}
	}
}

func TestChunkText_Deterministic(t *testing.T) {
	text := "One sentence here. Another sentence there. A third for good measure. And a fourth to close."
	config := ChunkConfig{MaxChunkSize: 60, OverlapSize: 25, OverlapSentences: 2}

	first := ChunkText(text, config)
	for i := 0; i < 5; i++ {
		again := ChunkText(text, config)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d chunks, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d chunk[%d] = %q, want %q", i, j, again[j], first[j])
			}
		}
	}
}

func TestChunkDocument_EmptyContent(t *testing.T) {
	doc := models.Document{
		ID:      1,
		Title:   models.RenderedField{Rendered: "Empty"},
		Content: models.RenderedField{Rendered: "<div><br/></div>"},
	}

	_, err := ChunkDocument(doc, DefaultChunkConfig())
	if !errors.Is(err, ErrNoText) {
		t.Errorf("ChunkDocument() error = %v, want ErrNoText", err)
	}
}

func TestChunkDocument_StripsMarkupFromTitle(t *testing.T) {
	doc := models.Document{
		ID:      7,
		Title:   models.RenderedField{Rendered: "Hello <em>World</em>"},
		Content: models.RenderedField{Rendered: "<p>Some content here.</p>"},
		URL:     "https://example.com/hello",
	}

	chunked, err := ChunkDocument(doc, DefaultChunkConfig())
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if chunked.Title != "Hello World" {
		t.Errorf("Title = %q, want %q", chunked.Title, "Hello World")
	}
	if chunked.ID != 7 || chunked.URL != "https://example.com/hello" {
		t.Errorf("identity not carried over: %+v", chunked)
	}
	if len(chunked.Chunks) != 1 || chunked.Chunks[0] != "Some content here." {
		t.Errorf("Chunks = %q", chunked.Chunks)
	}
}

func TestChunkAll_SkipsFailingDocuments(t *testing.T) {
	docs := []models.Document{
		{ID: 1, Content: models.RenderedField{Rendered: "<p>Usable content.</p>"}},
		{ID: 2, Content: models.RenderedField{Rendered: "<script>only()</script>"}},
		{ID: 3, Content: models.RenderedField{Rendered: "More usable content."}},
	}

	chunked := ChunkAll(docs, DefaultChunkConfig())
	if len(chunked) != 2 {
		t.Fatalf("ChunkAll() kept %d documents, want 2", len(chunked))
	}
	if chunked[0].ID != 1 || chunked[1].ID != 3 {
		t.Errorf("wrong documents kept: %d, %d", chunked[0].ID, chunked[1].ID)
	}
}
