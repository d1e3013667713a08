package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter renders a graph topology in external formats.
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates an exporter for the given graph.
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// DrawMermaid generates a Mermaid flowchart of the graph, top-down.
func (e *Exporter[S]) DrawMermaid() string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	if e.graph.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		sb.WriteString(fmt.Sprintf("    START --> %s\n", e.graph.entryPoint))
	}

	names := make([]string, 0, len(e.graph.nodes))
	for name := range e.graph.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", name, name))
	}

	hasEnd := false
	for _, edge := range e.graph.edges {
		if edge.To == END {
			hasEnd = true
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", edge.From, edge.To))
	}

	froms := make([]string, 0, len(e.graph.conditionalEdges))
	for from := range e.graph.conditionalEdges {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		sb.WriteString(fmt.Sprintf("    %s -.-> %s_condition{?}\n", from, from))
	}

	if hasEnd || len(froms) > 0 {
		sb.WriteString("    END([\"END\"])\n")
	}

	return sb.String()
}
