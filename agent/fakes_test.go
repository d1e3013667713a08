package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// modelCall records one request seen by the fake model.
type modelCall struct {
	prompt string
	images int
}

// fakeModel scripts llms.Model by dispatching on prompt markers, so one fake
// serves routing, grading and generation in the same turn.
type fakeModel struct {
	mu    sync.Mutex
	calls []modelCall

	routeJSON  string
	routeErr   error
	relevant   []string
	relevErr   error
	grounded   []string
	groundErr  error
	addresses  string
	addressErr error
	answer     string
	answerErr  error

	relevanceCalls int
	groundingCalls int
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt string
	images := 0
	for _, msg := range messages {
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				prompt = p.Text
			case llms.ImageURLContent:
				images++
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, modelCall{prompt: prompt, images: images})

	respond := func(text string, err error) (*llms.ContentResponse, error) {
		if err != nil {
			return nil, err
		}
		return &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: text}},
		}, nil
	}

	switch {
	case strings.Contains(prompt, "routing a user question"):
		return respond(m.routeJSON, m.routeErr)
	case strings.Contains(prompt, "assessing relevance"):
		if m.relevErr != nil {
			return respond("", m.relevErr)
		}
		score := "yes"
		if m.relevanceCalls < len(m.relevant) {
			score = m.relevant[m.relevanceCalls]
		}
		m.relevanceCalls++
		return respond(score, nil)
	case strings.Contains(prompt, "grounded in / supported by"):
		if m.groundErr != nil {
			return respond("", m.groundErr)
		}
		score := "yes"
		if len(m.grounded) > 0 {
			idx := m.groundingCalls
			if idx >= len(m.grounded) {
				idx = len(m.grounded) - 1
			}
			score = m.grounded[idx]
		}
		m.groundingCalls++
		return respond(score, nil)
	case strings.Contains(prompt, "addresses / resolves"):
		return respond(m.addresses, m.addressErr)
	default:
		return respond(m.answer, m.answerErr)
	}
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

// happyModel is a fake that routes to the vectorstore and approves
// everything on the first pass.
func happyModel() *fakeModel {
	return &fakeModel{
		routeJSON: `{"datasource": "vectorstore"}`,
		addresses: "yes",
		answer:    "The report covers fiscal year 2025.",
	}
}

type fakeRetriever struct {
	pages []RetrievedPage
	err   error
	calls int
	lastK int
}

func (r *fakeRetriever) Search(ctx context.Context, query string, k int) ([]RetrievedPage, error) {
	r.calls++
	r.lastK = k
	if r.err != nil {
		return nil, r.err
	}
	return r.pages, nil
}

type fakeSearcher struct {
	snippets []string
	err      error
	calls    int
}

func (s *fakeSearcher) Search(ctx context.Context, query string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snippets, nil
}

func samplePages(n int) []RetrievedPage {
	pages := make([]RetrievedPage, 0, n)
	for i := 0; i < n; i++ {
		pages = append(pages, RetrievedPage{
			Content:  "data:image/png;base64,aGVsbG8=",
			Metadata: map[string]any{"page": i, "source": "report.pdf"},
		})
	}
	return pages
}
