package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const routerPrompt = `You are an expert at routing a user question to a vectorstore or web search.
The vectorstore contains document images (like PDFs, CVs, reports) with visual and textual content.
Use the vectorstore for questions about documents, personal information, qualifications, experience, skills, or any content that would typically be found in documents.
Use websearch for general knowledge questions, current events, or information not typically found in personal or professional documents.

User question: %s

Respond with ONLY a JSON object, nothing else: {"datasource": "vectorstore"} or {"datasource": "websearch"}`

// routeResponse is the structured output of the routing call.
type routeResponse struct {
	Datasource string `json:"datasource"`
}

// Router classifies a question as document-seeking or general-knowledge.
type Router struct {
	model llms.Model
}

// NewRouter creates a router backed by the given model.
func NewRouter(model llms.Model) *Router {
	return &Router{model: model}
}

// Route returns RouteVectorstore or RouteWebSearch. An error means the
// classifier was unavailable or produced unusable output; the caller decides
// the default, routing must never fail a turn.
func (r *Router) Route(ctx context.Context, question string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(routerPrompt, question)),
	}

	resp, err := r.model.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("routing call failed: %w", err)
	}

	var routed routeResponse
	if err := json.Unmarshal([]byte(cleanJSONResponse(firstChoice(resp))), &routed); err != nil {
		return "", fmt.Errorf("routing response did not parse: %w", err)
	}

	switch routed.Datasource {
	case RouteVectorstore, RouteWebSearch:
		return routed.Datasource, nil
	default:
		return "", fmt.Errorf("routing response carried unknown datasource %q", routed.Datasource)
	}
}

// firstChoice extracts the text of the first choice, empty when there is
// none.
func firstChoice(resp *llms.ContentResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Content
}

// cleanJSONResponse strips the markdown code fences some models wrap JSON
// output in.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
