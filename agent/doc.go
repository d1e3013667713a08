// Package agent implements an agentic question-answering pipeline over a
// corpus of scanned document pages.
//
// A turn routes the question to the page corpus or to web search, grades
// retrieved pages for relevance, generates a multimodal answer, and gates
// that answer on grounding and usefulness. The gate can cycle back into
// regeneration or escalate into web search; both cycles are bounded by
// per-turn counters so every turn terminates.
//
// The pipeline is deliberately failure-tolerant: classifier and generator
// failures resolve to documented defaults and the turn completes with some
// answer. Only a failed document retrieval surfaces as a turn error.
package agent
