package agent

import (
	"context"
)

// RetrievedPage is one raw hit from the document store, before it is mapped
// into the Document shape.
type RetrievedPage struct {
	// Content is the page image payload as a data URL.
	Content string

	// Metadata is the stored payload metadata. The "page" key, when present,
	// carries the page number.
	Metadata map[string]any
}

// Retriever is the document store boundary: top-k similarity search over the
// page corpus. Implementations must be side-effect-free, idempotent against
// an unchanged store, and safe for concurrent independent calls.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]RetrievedPage, error)
}

// Searcher is the live web search boundary. Only snippet text is consumed.
// Implementations must be safe for concurrent independent calls.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// pageFromMetadata extracts the page number from adapter metadata, defaulting
// to 0 when absent or of an unexpected type.
func pageFromMetadata(metadata map[string]any) int {
	switch v := metadata["page"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
