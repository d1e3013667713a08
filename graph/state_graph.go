package graph

import (
	"context"
	"fmt"

	"github.com/docsight/docsight/log"
)

// DefaultMaxSteps bounds a walk when the caller does not set its own limit.
// Decision graphs with cycles terminate through their own counters well
// before this; the engine limit only catches graphs that fail to.
const DefaultMaxSteps = 25

// Node is a named transformation of the state. The function receives the
// current state by value and returns a complete replacement.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes what the node does.
	Description string

	// Function transforms the state. It must not retain the input state.
	Function func(ctx context.Context, state S) (S, error)
}

// StateGraph is a cyclic decision graph over a state type S. One node is
// active at a time; transitions are either static edges or conditional edges
// evaluated against the state after the node ran.
type StateGraph[S any] struct {
	nodes            map[string]Node[S]
	edges            []Edge
	conditionalEdges map[string]func(ctx context.Context, state S) string
	entryPoint       string
	maxSteps         int
}

// NewStateGraph creates an empty graph for state type S.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
		maxSteps:         DefaultMaxSteps,
	}
}

// AddNode registers a node with the given name, description and function.
func (g *StateGraph[S]) AddNode(name, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a static edge between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge routes "from" to the node name returned by condition at
// runtime. A conditional edge takes precedence over static edges from the
// same node.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the node the walk starts from.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetMaxSteps overrides the engine's step bound. Values <= 0 restore the
// default.
func (g *StateGraph[S]) SetMaxSteps(n int) {
	if n <= 0 {
		n = DefaultMaxSteps
	}
	g.maxSteps = n
}

// Runnable is a compiled graph ready to execute turns. It is safe for
// concurrent Invoke calls: each walk owns its state and the graph topology is
// immutable after Compile.
type Runnable[S any] struct {
	graph  *StateGraph[S]
	logger log.Logger
}

// Compile validates the graph and returns a Runnable.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}

	return &Runnable[S]{
		graph:  g,
		logger: log.GetDefaultLogger(),
	}, nil
}

// WithLogger returns a Runnable that logs node transitions to the given
// logger instead of the package default.
func (r *Runnable[S]) WithLogger(logger log.Logger) *Runnable[S] {
	return &Runnable[S]{graph: r.graph, logger: logger}
}

// Invoke walks the graph from the entry point until an edge reaches END,
// threading the state by value through each node. Cancellation is observed
// between node boundaries: a node that already started runs to completion,
// and its output state is discarded along with the walk.
func (r *Runnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	state := initialState
	current := r.graph.entryPoint

	for step := 0; ; step++ {
		if step >= r.graph.maxSteps {
			var zero S
			return zero, fmt.Errorf("%w: %d", ErrMaxStepsExceeded, r.graph.maxSteps)
		}

		if err := ctx.Err(); err != nil {
			var zero S
			return zero, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			var zero S
			return zero, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		r.logger.Debug("node %s: start", current)
		next, err := node.Function(ctx, state)
		if err != nil {
			var zero S
			return zero, fmt.Errorf("error in node %s: %w", current, err)
		}
		state = next

		target, err := r.nextNode(ctx, current, state)
		if err != nil {
			var zero S
			return zero, err
		}
		r.logger.Debug("node %s -> %s", current, target)

		if target == END {
			return state, nil
		}
		current = target
	}
}

// nextNode resolves the outgoing transition of a node: conditional edge
// first, then the first static edge.
func (r *Runnable[S]) nextNode(ctx context.Context, current string, state S) (string, error) {
	if condition, ok := r.graph.conditionalEdges[current]; ok {
		target := condition(ctx, state)
		if target == "" {
			return "", fmt.Errorf("conditional edge returned empty next node from %s", current)
		}
		return target, nil
	}

	for _, edge := range r.graph.edges {
		if edge.From == current {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current)
}
