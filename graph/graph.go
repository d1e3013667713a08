package graph

import (
	"errors"
)

// END is the reserved name of the terminal pseudo-node. An edge pointing at
// END stops the walk; END never executes a function.
const END = "END"

var (
	// ErrEntryPointNotSet is returned by Compile when no entry point was set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when the walk reaches a node name that was
	// never added to the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when a node has neither a static nor a
	// conditional edge leaving it.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMaxStepsExceeded is returned when a walk runs longer than the
	// configured step bound. Cyclic graphs must bound their own loops; the
	// step limit is the engine's last line of defense.
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
)

// Edge is a static transition between two named nodes.
type Edge struct {
	// From is the name of the node the edge leaves.
	From string

	// To is the name of the node the edge enters, or END.
	To string
}
