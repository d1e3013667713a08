package agent

// Node names of the question-answering graph.
const (
	NodeRoute          = "route"
	NodeRetrieve       = "retrieve"
	NodeGradeDocuments = "grade_documents"
	NodeGenerate       = "generate"
	NodeWebSearch      = "web_search"
)

// Route targets returned by the question router.
const (
	RouteVectorstore = "vectorstore"
	RouteWebSearch   = "websearch"
)

// GateDecision is the outcome of grading a generation against its evidence
// and the question.
type GateDecision string

const (
	// GateNotSupported means the generation is not grounded in the image
	// evidence and should be regenerated.
	GateNotSupported GateDecision = "not_supported"

	// GateUseful means the generation is grounded and addresses the
	// question.
	GateUseful GateDecision = "useful"

	// GateNotUseful means the generation is grounded but does not address
	// the question; more evidence is needed.
	GateNotUseful GateDecision = "not_useful"
)

// State is the single record threaded through one turn of the graph. Nodes
// receive it by value and return a complete replacement; no partial patches.
type State struct {
	// Question is the user's question, immutable for the turn.
	Question string

	// Route is the entry decision, set once by the route node.
	Route string

	// Documents is the working evidence set, replaced wholesale by each node
	// that touches it.
	Documents []Document

	// WebSearch is set by document grading when at least one candidate was
	// judged irrelevant, meaning the corpus alone is insufficient.
	WebSearch bool

	// Generation is the current answer text, overwritten on every attempt.
	Generation string

	// GenerateAttempts counts generate runs this turn; bounds the
	// regeneration cycle.
	GenerateAttempts int

	// SearchRounds counts web search runs this turn; bounds the escalation
	// cycle.
	SearchRounds int
}

// newState builds the fresh state a turn starts from.
func newState(question string) State {
	return State{
		Question:  question,
		Documents: []Document{},
	}
}

// Result is what a completed turn hands back to the caller.
type Result struct {
	// TurnID uniquely identifies the turn.
	TurnID string `json:"turn_id"`

	// Question is the question that was asked.
	Question string `json:"question"`

	// Answer is the final answer text. Always non-empty for a completed
	// turn, possibly a labeled fallback.
	Answer string `json:"answer"`

	// Documents is the evidence set the answer was generated from.
	Documents []Document `json:"-"`

	// WebSearchUsed reports whether web evidence was pulled in.
	WebSearchUsed bool `json:"web_search_used"`

	// DocumentsUsed is the size of the final evidence set.
	DocumentsUsed int `json:"documents_used"`

	// Degraded reports that the agent ran without a language model and the
	// answer is a placeholder.
	Degraded bool `json:"degraded,omitempty"`
}
