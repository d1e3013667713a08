package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/docsight/docsight/agent"
	"github.com/docsight/docsight/log"
	"github.com/docsight/docsight/session/memory"
)

// stubModel approves everything and answers with fixed markdown.
type stubModel struct{}

func (stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if p, ok := part.(llms.TextContent); ok {
				prompt = p.Text
			}
		}
	}

	text := "The author is **Jane Doe**."
	switch {
	case strings.Contains(prompt, "routing a user question"):
		text = `{"datasource": "vectorstore"}`
	case strings.Contains(prompt, "binary score"):
		text = "yes"
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}, nil
}

func (m stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

type stubRetriever struct{}

func (stubRetriever) Search(ctx context.Context, query string, k int) ([]agent.RetrievedPage, error) {
	return []agent.RetrievedPage{
		{Content: "data:image/png;base64,cGFnZQ==", Metadata: map[string]any{"page": 0, "source": "cv.pdf"}},
	}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string) ([]string, error) {
	return []string{"a snippet"}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	a, err := agent.New(agent.Config{
		Model:     stubModel{},
		Retriever: stubRetriever{},
		Searcher:  stubSearcher{},
		Logger:    &log.NoOpLogger{},
	})
	require.NoError(t, err)

	srv, err := New(Config{
		Agent:    a,
		Sessions: memory.New(),
		Logger:   &log.NoOpLogger{},
	})
	require.NoError(t, err)
	return srv
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	rec := postJSON(t, handler, "/api/query", QueryRequest{Question: "Who is the author?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.TurnID)
	assert.Equal(t, "The author is **Jane Doe**.", resp.Answer)
	assert.Contains(t, resp.AnswerHTML, "<strong>Jane Doe</strong>")
	assert.Equal(t, 1, resp.DocumentsUsed)
	assert.False(t, resp.WebSearchUsed)
}

func TestQueryEndpointValidation(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	rec := postJSON(t, handler, "/api/query", QueryRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec2.Code)
}

func TestQueryRecordsHistory(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	rec := postJSON(t, handler, "/api/query", QueryRequest{SessionID: "s1", Question: "Who is the author?"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history?session_id=s1", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	var history HistoryResponse
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &history))
	require.Len(t, history.Turns, 1)
	assert.Equal(t, "Who is the author?", history.Turns[0].Question)
}

func TestHistoryClear(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	postJSON(t, handler, "/api/query", QueryRequest{SessionID: "s1", Question: "Who is the author?"})

	req := httptest.NewRequest(http.MethodDelete, "/api/history?session_id=s1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/history?session_id=s1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var history HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Empty(t, history.Turns)
}

func TestIngestNotConfigured(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/ingest", IngestRequest{Dir: "/tmp/pages"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["ingestion"])
}

func TestRenderAnswerHTMLSanitizes(t *testing.T) {
	html := renderAnswerHTML("Hello <script>alert(1)</script> **world**")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "<strong>world</strong>")
}
