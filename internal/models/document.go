// Package models defines the data types shared across the sync and query pipelines.
package models

// RenderedField mirrors the WordPress REST envelope for title/content fields.
type RenderedField struct {
	Rendered string `json:"rendered"`
}

// Document is one published post fetched from the remote feed.
// Identity is ID; the Modified timestamp is the revision token and is
// only ever compared for string equality.
type Document struct {
	ID       int64         `json:"id"`
	Title    RenderedField `json:"title"`
	Content  RenderedField `json:"content"`
	Modified string        `json:"modified"`
	URL      string        `json:"link"`
}

// ChunkedDocument holds the retrievable passages derived from one document.
// Chunks keep their original order; the slice index is the chunk ordinal.
type ChunkedDocument struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	URL    string   `json:"url"`
	Chunks []string `json:"chunks"`
}

// TotalChunks sums the chunk counts of a chunked corpus.
func TotalChunks(docs []ChunkedDocument) int {
	total := 0
	for _, d := range docs {
		total += len(d.Chunks)
	}
	return total
}
