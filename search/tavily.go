// Package search implements the live web search boundary on the Tavily API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/docsight/docsight/agent"
)

const (
	defaultBaseURL    = "https://api.tavily.com/search"
	defaultMaxResults = 3
)

// Tavily searches the web and returns plain-text snippets. It implements
// agent.Searcher.
type Tavily struct {
	apiKey     string
	baseURL    string
	maxResults int
	rawContent bool
	client     *http.Client
}

var _ agent.Searcher = (*Tavily)(nil)

type TavilyOption func(*Tavily)

// WithBaseURL overrides the search endpoint URL.
func WithBaseURL(baseURL string) TavilyOption {
	return func(t *Tavily) {
		t.baseURL = baseURL
	}
}

// WithMaxResults sets how many results to request (1-20).
func WithMaxResults(n int) TavilyOption {
	return func(t *Tavily) {
		if n < 1 {
			n = 1
		}
		if n > 20 {
			n = 20
		}
		t.maxResults = n
	}
}

// WithRawContent requests full page content alongside snippets. Raw HTML is
// reduced to text before it reaches the caller.
func WithRawContent(enabled bool) TavilyOption {
	return func(t *Tavily) {
		t.rawContent = enabled
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(t *Tavily) {
		t.client = client
	}
}

// NewTavily creates a Tavily searcher. If apiKey is empty, it tries the
// TAVILY_API_KEY environment variable.
func NewTavily(apiKey string, opts ...TavilyOption) (*Tavily, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY not set")
	}

	t := &Tavily{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: defaultMaxResults,
		client:     &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

type tavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

// Search returns one text snippet per result, in result order. Results with
// no usable text are dropped.
func (t *Tavily) Search(ctx context.Context, query string) ([]string, error) {
	requestBody := map[string]any{
		"api_key":             t.apiKey,
		"query":               query,
		"max_results":         t.maxResults,
		"search_depth":        "advanced",
		"include_answer":      false,
		"include_raw_content": t.rawContent,
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	snippets := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		snippet := t.snippetFor(r)
		if snippet == "" {
			continue
		}
		snippets = append(snippets, snippet)
	}
	return snippets, nil
}

// snippetFor prefers extracted raw content over the short snippet when raw
// content was requested and survives HTML reduction.
func (t *Tavily) snippetFor(r tavilyResult) string {
	if t.rawContent && r.RawContent != "" {
		if text := extractText(r.RawContent); text != "" {
			return text
		}
	}
	return strings.TrimSpace(r.Content)
}
