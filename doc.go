// Docsight answers natural-language questions about scanned documents.
//
// Pages are stored as embedded images in Qdrant; a cyclic decision graph
// routes each question, grades retrieved pages, generates a multimodal
// answer, and gates it on grounding and usefulness, escalating to web search
// when the corpus cannot answer. See the agent package for the pipeline and
// cmd/docsight for the CLI and HTTP server.
package docsight
