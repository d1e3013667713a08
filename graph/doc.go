// Package graph provides a small, typed state-machine engine for cyclic
// decision graphs.
//
// A StateGraph is built from named nodes, each a pure transformation of a
// state value, connected by static edges or conditional edges whose target is
// chosen at runtime from the state. Compile produces a Runnable whose Invoke
// walks the graph sequentially from the entry point until a transition
// reaches END.
//
// The engine differs from fan-out workflow engines on purpose: exactly one
// node is active at a time, state is threaded by value, cancellation is
// observed between node boundaries, and every walk is bounded by a step
// limit so that cyclic graphs cannot spin forever.
//
// Example:
//
//	type counter struct{ N int }
//
//	g := graph.NewStateGraph[counter]()
//	g.AddNode("inc", "increment", func(ctx context.Context, s counter) (counter, error) {
//		s.N++
//		return s, nil
//	})
//	g.AddConditionalEdge("inc", func(ctx context.Context, s counter) string {
//		if s.N < 3 {
//			return "inc"
//		}
//		return graph.END
//	})
//	g.SetEntryPoint("inc")
//
//	runnable, _ := g.Compile()
//	final, _ := runnable.Invoke(context.Background(), counter{})
//	// final.N == 3
package graph
