// Package store implements the document store over a Qdrant collection of
// embedded page images: ingestion of rendered pages and top-k similarity
// search for the agent.
package store

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/qdrant"

	"github.com/docsight/docsight/agent"
	"github.com/docsight/docsight/log"
)

const defaultCollection = "pdf_pages"

// Config describes the Qdrant connection.
type Config struct {
	// URL is the Qdrant HTTP endpoint, e.g. http://localhost:6333.
	URL string

	// APIKey authenticates against a managed Qdrant. Optional, falls back
	// to QDRANT_API_KEY.
	APIKey string

	// Collection is the collection name. Defaults to "pdf_pages".
	Collection string

	// Embedder turns page images and queries into vectors.
	Embedder embeddings.Embedder

	// Logger receives ingestion progress. Defaults to the package logger.
	Logger log.Logger
}

// PageStore is the Qdrant-backed page corpus. It implements agent.Retriever.
type PageStore struct {
	store  vectorstores.VectorStore
	logger log.Logger
}

var _ agent.Retriever = (*PageStore)(nil)

// New connects to Qdrant and wraps the collection as a PageStore.
func New(cfg Config) (*PageStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("QDRANT_API_KEY")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetDefaultLogger()
	}

	endpoint, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant URL %q: %w", cfg.URL, err)
	}

	opts := []qdrant.Option{
		qdrant.WithURL(*endpoint),
		qdrant.WithCollectionName(cfg.Collection),
		qdrant.WithEmbedder(cfg.Embedder),
	}
	if cfg.APIKey != "" {
		opts = append(opts, qdrant.WithAPIKey(cfg.APIKey))
	}

	inner, err := qdrant.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &PageStore{store: inner, logger: cfg.Logger}, nil
}

// NewWithVectorStore wraps an existing vector store. Used by tests and by
// callers that manage their own store options.
func NewWithVectorStore(vs vectorstores.VectorStore, logger log.Logger) *PageStore {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &PageStore{store: vs, logger: logger}
}

// Search runs top-k similarity search and maps the hits into retrieved
// pages. An empty result is not an error.
func (s *PageStore) Search(ctx context.Context, query string, k int) ([]agent.RetrievedPage, error) {
	docs, err := s.store.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	pages := make([]agent.RetrievedPage, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, agent.RetrievedPage{
			Content:  doc.PageContent,
			Metadata: doc.Metadata,
		})
	}
	return pages, nil
}

// AddPages stores rendered pages as one document each, page image as content
// and page number plus source in the payload.
func (s *PageStore) AddPages(ctx context.Context, pages []Page) (int, error) {
	if len(pages) == 0 {
		return 0, nil
	}

	docs := make([]schema.Document, 0, len(pages))
	for _, page := range pages {
		docs = append(docs, schema.Document{
			PageContent: page.DataURL,
			Metadata: map[string]any{
				"page":   page.Number,
				"source": page.Source,
			},
		})
	}

	if _, err := s.store.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to add documents: %w", err)
	}
	s.logger.Info("ingest: stored %d page(s)", len(docs))
	return len(docs), nil
}
