package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTavilyServer(t *testing.T, results []map[string]any, requests *[]map[string]any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if requests != nil {
			*requests = append(*requests, req)
		}

		resp := map[string]any{
			"query":   req["query"],
			"results": results,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestTavilySearchReturnsSnippets(t *testing.T) {
	var requests []map[string]any
	server := newTavilyServer(t, []map[string]any{
		{"title": "Result A", "url": "https://a.example", "content": "snippet a", "score": 0.9},
		{"title": "Result B", "url": "https://b.example", "content": "snippet b", "score": 0.5},
		{"title": "Empty", "url": "https://c.example", "content": "   "},
	}, &requests)
	defer server.Close()

	searcher, err := NewTavily("test-key", WithBaseURL(server.URL), WithMaxResults(5))
	require.NoError(t, err)

	snippets, err := searcher.Search(context.Background(), "capital of France")
	require.NoError(t, err)
	assert.Equal(t, []string{"snippet a", "snippet b"}, snippets)

	require.Len(t, requests, 1)
	assert.Equal(t, "capital of France", requests[0]["query"])
	assert.Equal(t, "test-key", requests[0]["api_key"])
	assert.Equal(t, float64(5), requests[0]["max_results"])
	assert.Equal(t, "advanced", requests[0]["search_depth"])
}

func TestTavilySearchPrefersExtractedRawContent(t *testing.T) {
	server := newTavilyServer(t, []map[string]any{
		{
			"title":       "Page",
			"url":         "https://a.example",
			"content":     "short snippet",
			"raw_content": "<html><head><style>p{}</style></head><body><p>Full   article</p><p>text.</p><script>x()</script></body></html>",
		},
	}, nil)
	defer server.Close()

	searcher, err := NewTavily("test-key", WithBaseURL(server.URL), WithRawContent(true))
	require.NoError(t, err)

	snippets, err := searcher.Search(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "Full article text.", snippets[0])
}

func TestTavilySearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	searcher, err := NewTavily("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewTavilyRequiresKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")

	_, err := NewTavily("")
	assert.Error(t, err)
}

func TestWithMaxResultsClamps(t *testing.T) {
	searcher, err := NewTavily("test-key", WithMaxResults(100))
	require.NoError(t, err)
	assert.Equal(t, 20, searcher.maxResults)

	searcher, err = NewTavily("test-key", WithMaxResults(-1))
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.maxResults)
}

func TestExtractText(t *testing.T) {
	html := "<html><body><h1>Title</h1>\n<p>Some   text</p><script>evil()</script></body></html>"
	assert.Equal(t, "Title Some text", extractText(html))
}

func TestExtractTextPlainInput(t *testing.T) {
	assert.Equal(t, "just plain words", extractText("  just plain words  "))
}

func TestExtractTextTruncates(t *testing.T) {
	long := strings.Repeat("a", maxExtractedRunes+100)
	assert.Len(t, extractText(long), maxExtractedRunes)
}
