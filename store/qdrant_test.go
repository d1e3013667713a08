package store

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/docsight/docsight/log"
)

// fakeVectorStore records calls and plays back canned hits.
type fakeVectorStore struct {
	added   []schema.Document
	hits    []schema.Document
	addErr  error
	findErr error
	lastK   int
}

func (f *fakeVectorStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, docs...)
	ids := make([]string, len(docs))
	return ids, nil
}

func (f *fakeVectorStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	f.lastK = numDocuments
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.hits, nil
}

func TestSearchMapsHits(t *testing.T) {
	vs := &fakeVectorStore{
		hits: []schema.Document{
			{PageContent: "data:image/png;base64,cGFnZTA=", Metadata: map[string]any{"page": 0, "source": "cv.pdf"}},
			{PageContent: "data:image/png;base64,cGFnZTI=", Metadata: map[string]any{"page": 2, "source": "cv.pdf"}},
		},
	}
	ps := NewWithVectorStore(vs, &log.NoOpLogger{})

	pages, err := ps.Search(context.Background(), "work experience", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, vs.lastK)
	require.Len(t, pages, 2)
	assert.Equal(t, "data:image/png;base64,cGFnZTA=", pages[0].Content)
	assert.Equal(t, 2, pages[1].Metadata["page"])
}

func TestSearchRepeatedQueryReturnsSamePages(t *testing.T) {
	vs := &fakeVectorStore{
		hits: []schema.Document{
			{PageContent: "data:image/png;base64,cGFnZTA=", Metadata: map[string]any{"page": 0, "source": "cv.pdf"}},
			{PageContent: "data:image/png;base64,cGFnZTE=", Metadata: map[string]any{"page": 1, "source": "cv.pdf"}},
			{PageContent: "data:image/png;base64,cGFnZTI=", Metadata: map[string]any{"page": 2, "source": "cv.pdf"}},
		},
	}
	ps := NewWithVectorStore(vs, &log.NoOpLogger{})

	first, err := ps.Search(context.Background(), "work experience", 3)
	require.NoError(t, err)
	second, err := ps.Search(context.Background(), "work experience", 3)
	require.NoError(t, err)

	// Same query against an unchanged store yields identical pages in order.
	assert.Equal(t, first, second)
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	ps := NewWithVectorStore(&fakeVectorStore{}, &log.NoOpLogger{})

	pages, err := ps.Search(context.Background(), "work experience", 3)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestSearchPropagatesStoreError(t *testing.T) {
	vs := &fakeVectorStore{findErr: errors.New("connection refused")}
	ps := NewWithVectorStore(vs, &log.NoOpLogger{})

	_, err := ps.Search(context.Background(), "work experience", 3)
	assert.Error(t, err)
}

func TestAddPages(t *testing.T) {
	vs := &fakeVectorStore{}
	ps := NewWithVectorStore(vs, &log.NoOpLogger{})

	n, err := ps.AddPages(context.Background(), []Page{
		{DataURL: "data:image/png;base64,cGFnZTA=", Number: 0, Source: "cv.pdf"},
		{DataURL: "data:image/png;base64,cGFnZTE=", Number: 1, Source: "cv.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, vs.added, 2)
	assert.Equal(t, "data:image/png;base64,cGFnZTE=", vs.added[1].PageContent)
	assert.Equal(t, 1, vs.added[1].Metadata["page"])
	assert.Equal(t, "cv.pdf", vs.added[1].Metadata["source"])
}

func TestAddPagesEmpty(t *testing.T) {
	vs := &fakeVectorStore{}
	ps := NewWithVectorStore(vs, &log.NoOpLogger{})

	n, err := ps.AddPages(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, vs.added)
}

func TestLoadPagesOrdersAndEncodes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_01.png"), []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_00.png"), []byte("zero"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))

	pages, err := LoadPages(dir, "cv.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 0, pages[0].Number)
	assert.Equal(t, "cv.pdf", pages[0].Source)
	assert.True(t, strings.HasPrefix(pages[0].DataURL, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(pages[0].DataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "zero", string(raw))
}

func TestLoadPagesEmptyDirectory(t *testing.T) {
	_, err := LoadPages(t.TempDir(), "cv.pdf")
	assert.Error(t, err)
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p0.jpg"), []byte("jpeg bytes"), 0o644))

	vs := &fakeVectorStore{}
	ps := NewWithVectorStore(vs, &log.NoOpLogger{})

	n, err := ps.IngestDirectory(context.Background(), dir, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, vs.added, 1)
	assert.True(t, strings.HasPrefix(vs.added[0].PageContent, "data:image/jpeg;base64,"))
	assert.Equal(t, "report.pdf", vs.added[0].Metadata["source"])
}
