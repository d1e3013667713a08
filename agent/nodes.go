package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRetrieval marks a turn that failed because the document store was
// unreachable. An empty corpus result is not an error; a failed lookup is.
var ErrRetrieval = errors.New("document retrieval failed")

// routeNode classifies the question once per turn. Router failure defaults
// to the owned corpus; routing never fails a turn.
func (a *Agent) routeNode(ctx context.Context, state State) (State, error) {
	route, err := a.router.Route(ctx, state.Question)
	if err != nil {
		a.logger.Warn("route: classifier unavailable, defaulting to vectorstore: %v", err)
		route = RouteVectorstore
	}
	a.logger.Info("route: question -> %s", route)

	state.Route = route
	return state, nil
}

// retrieveNode runs top-k similarity search and maps the hits into the
// Document shape. No filtering here; that is the grading step's job.
func (a *Agent) retrieveNode(ctx context.Context, state State) (State, error) {
	pages, err := a.retriever.Search(ctx, state.Question, a.topK)
	if err != nil {
		return state, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	docs := make([]Document, 0, len(pages))
	for _, page := range pages {
		docs = append(docs, NewPageDocument(page.Content, pageFromMetadata(page.Metadata), page.Metadata))
	}
	a.logger.Info("retrieve: %d page(s)", len(docs))

	state.Documents = docs
	return state, nil
}

// gradeDocumentsNode grades each document independently. One irrelevant
// document flags the whole batch for web search. A grading failure keeps the
// document rather than silently losing evidence.
func (a *Agent) gradeDocumentsNode(ctx context.Context, state State) (State, error) {
	filtered := make([]Document, 0, len(state.Documents))
	webSearch := false

	for _, doc := range state.Documents {
		relevant, err := a.relevance.Grade(ctx, state.Question, doc)
		if err != nil {
			a.logger.Warn("grade: page %d classifier failed, keeping document: %v", doc.PageNumber, err)
			filtered = append(filtered, doc)
			continue
		}
		if relevant {
			a.logger.Info("grade: page %d relevant", doc.PageNumber)
			filtered = append(filtered, doc)
		} else {
			a.logger.Info("grade: page %d not relevant", doc.PageNumber)
			webSearch = true
		}
	}

	state.Documents = filtered
	state.WebSearch = webSearch
	return state, nil
}

// webSearchNode searches the web and appends one text document wrapping the
// joined snippets. Prior image evidence is preserved. Search failure
// degrades to an empty-snippet document.
func (a *Agent) webSearchNode(ctx context.Context, state State) (State, error) {
	snippets, err := a.searcher.Search(ctx, state.Question)
	if err != nil {
		a.logger.Warn("web search: adapter failed, continuing with empty snippets: %v", err)
		snippets = nil
	}
	a.logger.Info("web search: %d snippet(s)", len(snippets))

	docs := make([]Document, 0, len(state.Documents)+1)
	docs = append(docs, state.Documents...)
	docs = append(docs, NewWebDocument(strings.Join(snippets, "\n")))

	state.Documents = docs
	state.SearchRounds++
	return state, nil
}

// generateNode produces the answer for the current evidence set. Generator
// failure yields a labeled fallback answer so the turn still terminates with
// some answer text.
func (a *Agent) generateNode(ctx context.Context, state State) (State, error) {
	state.GenerateAttempts++

	answer, err := a.generator.Generate(ctx, state.Question, state.Documents)
	if err != nil {
		a.logger.Error("generate: %v", err)
		answer = fallbackAnswer(state.Question)
	}
	a.logger.Info("generate: attempt %d, %d chars", state.GenerateAttempts, len(answer))

	state.Generation = answer
	return state, nil
}

// gradeGeneration is the composite gate behind the generate node: grounding
// first, then usefulness. Any classifier failure resolves to GateUseful so a
// possibly imperfect answer beats an endless loop.
func (a *Agent) gradeGeneration(ctx context.Context, state State) GateDecision {
	images := imageSubset(state.Documents)

	grounded := true
	if len(images) > 0 {
		var err error
		grounded, err = a.grounding.Grade(ctx, state.Documents, state.Generation)
		if err != nil {
			a.logger.Warn("gate: grounding classifier failed, assuming useful: %v", err)
			return GateUseful
		}
	}
	if !grounded {
		a.logger.Info("gate: generation not grounded in documents")
		return GateNotSupported
	}

	addresses, err := a.answer.Grade(ctx, state.Question, state.Generation)
	if err != nil {
		a.logger.Warn("gate: answer classifier failed, assuming useful: %v", err)
		return GateUseful
	}
	if addresses {
		a.logger.Info("gate: generation addresses question")
		return GateUseful
	}
	a.logger.Info("gate: generation does not address question")
	return GateNotUseful
}
