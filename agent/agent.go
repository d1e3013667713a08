package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/docsight/docsight/graph"
	"github.com/docsight/docsight/log"
)

// Defaults for the turn configuration.
const (
	// DefaultTopK is how many pages one retrieval pulls from the corpus.
	DefaultTopK = 3

	// DefaultMaxGenerateAttempts bounds the regeneration cycle. When the
	// bound is reached the turn terminates with the best available answer.
	DefaultMaxGenerateAttempts = 3

	// DefaultMaxSearchRounds bounds the escalation cycle.
	DefaultMaxSearchRounds = 2
)

// graphMaxSteps dimensions the engine step bound from the configured cycle
// bounds, so the counters always terminate a turn before the engine does.
// Worst case: route, retrieve and grade once, one generate per attempt or
// escalation, one web search per escalation.
func graphMaxSteps(maxGenerateAttempts, maxSearchRounds int) int {
	return 3 + maxGenerateAttempts + 2*maxSearchRounds + 2
}

// ErrEmptyQuestion is returned by Run for a blank question.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Config assembles an Agent. Model may be nil: the agent is then built in
// degraded mode and every turn short-circuits to a placeholder answer.
// Retriever and Searcher are required.
type Config struct {
	// Model is the multimodal language model behind routing, grading and
	// generation.
	Model llms.Model

	// Retriever is the document store adapter.
	Retriever Retriever

	// Searcher is the web search adapter.
	Searcher Searcher

	// TopK is how many pages to retrieve per turn. Defaults to DefaultTopK.
	TopK int

	// MaxGenerateAttempts bounds regeneration on ungrounded output.
	MaxGenerateAttempts int

	// MaxSearchRounds bounds escalation on off-topic output.
	MaxSearchRounds int

	// Logger receives node decisions. Defaults to the package logger.
	Logger log.Logger
}

// Agent answers questions against a corpus of scanned document pages,
// escalating to web search when the corpus cannot answer. One Agent serves
// concurrent turns; each Run owns a fresh state.
type Agent struct {
	router    *Router
	relevance *RelevanceGrader
	grounding *GroundingGrader
	answer    *AnswerGrader
	generator *Generator

	retriever Retriever
	searcher  Searcher

	topK                int
	maxGenerateAttempts int
	maxSearchRounds     int

	logger   log.Logger
	runnable *graph.Runnable[State]
	degraded bool
}

// New builds the agent and compiles its decision graph.
func New(cfg Config) (*Agent, error) {
	if cfg.Retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if cfg.Searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MaxGenerateAttempts <= 0 {
		cfg.MaxGenerateAttempts = DefaultMaxGenerateAttempts
	}
	if cfg.MaxSearchRounds <= 0 {
		cfg.MaxSearchRounds = DefaultMaxSearchRounds
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetDefaultLogger()
	}

	a := &Agent{
		retriever:           cfg.Retriever,
		searcher:            cfg.Searcher,
		topK:                cfg.TopK,
		maxGenerateAttempts: cfg.MaxGenerateAttempts,
		maxSearchRounds:     cfg.MaxSearchRounds,
		logger:              cfg.Logger,
		degraded:            cfg.Model == nil,
	}

	if a.degraded {
		a.logger.Warn("no language model configured, agent runs in degraded mode")
		return a, nil
	}

	a.router = NewRouter(cfg.Model)
	a.relevance = NewRelevanceGrader(cfg.Model)
	a.grounding = NewGroundingGrader(cfg.Model)
	a.answer = NewAnswerGrader(cfg.Model)
	a.generator = NewGenerator(cfg.Model)

	runnable, err := a.buildGraph().Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile graph: %w", err)
	}
	a.runnable = runnable.WithLogger(cfg.Logger)

	return a, nil
}

// buildGraph wires the turn state machine:
//
//	route -> {retrieve | web_search}
//	retrieve -> grade_documents -> {web_search | generate}
//	web_search -> generate
//	generate -> {generate | web_search | END}
func (a *Agent) buildGraph() *graph.StateGraph[State] {
	g := graph.NewStateGraph[State]()
	g.SetMaxSteps(graphMaxSteps(a.maxGenerateAttempts, a.maxSearchRounds))

	g.AddNode(NodeRoute, "Classify the question as document-seeking or general-knowledge", a.routeNode)
	g.AddNode(NodeRetrieve, "Retrieve candidate pages from the document store", a.retrieveNode)
	g.AddNode(NodeGradeDocuments, "Grade retrieved pages for relevance", a.gradeDocumentsNode)
	g.AddNode(NodeWebSearch, "Search the web and append a text document", a.webSearchNode)
	g.AddNode(NodeGenerate, "Generate an answer over the evidence set", a.generateNode)

	g.SetEntryPoint(NodeRoute)

	g.AddConditionalEdge(NodeRoute, func(ctx context.Context, state State) string {
		if state.Route == RouteWebSearch {
			return NodeWebSearch
		}
		return NodeRetrieve
	})

	g.AddEdge(NodeRetrieve, NodeGradeDocuments)

	g.AddConditionalEdge(NodeGradeDocuments, func(ctx context.Context, state State) string {
		if state.WebSearch {
			a.logger.Info("decision: not all documents relevant, include web search")
			return NodeWebSearch
		}
		a.logger.Info("decision: generate")
		return NodeGenerate
	})

	g.AddEdge(NodeWebSearch, NodeGenerate)

	g.AddConditionalEdge(NodeGenerate, func(ctx context.Context, state State) string {
		switch a.gradeGeneration(ctx, state) {
		case GateNotSupported:
			if state.GenerateAttempts >= a.maxGenerateAttempts {
				a.logger.Warn("gate: generate attempt limit reached, terminating with current answer")
				return graph.END
			}
			return NodeGenerate
		case GateNotUseful:
			if state.SearchRounds >= a.maxSearchRounds {
				a.logger.Warn("gate: web search limit reached, terminating with current answer")
				return graph.END
			}
			return NodeWebSearch
		default:
			return graph.END
		}
	})

	return g
}

// Run executes one turn: question in, final answer and evidence out. Only a
// failed retrieval surfaces as an error; every other failure is absorbed
// with a documented default so the turn completes with some answer.
func (a *Agent) Run(ctx context.Context, question string) (*Result, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	turnID := uuid.NewString()

	if a.degraded {
		return &Result{
			TurnID:   turnID,
			Question: question,
			Answer:   "The question answering service is running without a language model. Please configure model credentials and try again.",
			Degraded: true,
		}, nil
	}

	a.logger.Info("turn %s: %q", turnID, question)
	final, err := a.runnable.Invoke(ctx, newState(question))
	if err != nil {
		return nil, err
	}

	return &Result{
		TurnID:        turnID,
		Question:      question,
		Answer:        final.Generation,
		Documents:     final.Documents,
		WebSearchUsed: final.SearchRounds > 0,
		DocumentsUsed: len(final.Documents),
	}, nil
}

// Mermaid renders the turn graph topology as a Mermaid flowchart.
func (a *Agent) Mermaid() string {
	return graph.NewExporter(a.buildGraph()).DrawMermaid()
}
