// Package server exposes the question-answering agent over HTTP: one-shot
// queries, page ingestion, session history and a health probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docsight/docsight/agent"
	"github.com/docsight/docsight/log"
	"github.com/docsight/docsight/session"
	"github.com/docsight/docsight/store"
)

// Server wires the agent, page store and session history behind an HTTP API.
type Server struct {
	agent    *agent.Agent
	pages    *store.PageStore
	sessions session.Store
	logger   log.Logger
	addr     string
}

// Config assembles a Server.
type Config struct {
	Agent    *agent.Agent
	Pages    *store.PageStore
	Sessions session.Store
	Logger   log.Logger
	Addr     string // listen address, e.g. ":8080"
}

// New creates the server. Agent and Sessions are required; Pages may be nil,
// which disables the ingest endpoint.
func New(cfg Config) (*Server, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetDefaultLogger()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	return &Server{
		agent:    cfg.Agent,
		pages:    cfg.Pages,
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
		addr:     cfg.Addr,
	}, nil
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/ingest", s.handleIngest)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// Start blocks serving HTTP until the listener fails.
func (s *Server) Start() error {
	s.logger.Info("starting docsight server on %s", s.addr)
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// QueryResponse is the body of a successful query.
type QueryResponse struct {
	SessionID     string `json:"session_id"`
	TurnID        string `json:"turn_id"`
	Answer        string `json:"answer"`
	AnswerHTML    string `json:"answer_html"`
	WebSearchUsed bool   `json:"web_search_used"`
	DocumentsUsed int    `json:"documents_used"`
	Degraded      bool   `json:"degraded,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		sendJSONError(w, "question is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	s.logger.Info("query from session %s: %q", req.SessionID, req.Question)

	result, err := s.agent.Run(r.Context(), req.Question)
	if err != nil {
		s.logger.Error("query failed: %v", err)
		sendJSONError(w, "Failed to answer question", http.StatusInternalServerError)
		return
	}

	s.recordTurn(r.Context(), req.SessionID, result)

	sendJSONResponse(w, QueryResponse{
		SessionID:     req.SessionID,
		TurnID:        result.TurnID,
		Answer:        result.Answer,
		AnswerHTML:    renderAnswerHTML(result.Answer),
		WebSearchUsed: result.WebSearchUsed,
		DocumentsUsed: result.DocumentsUsed,
		Degraded:      result.Degraded,
	})
}

// recordTurn appends the turn to session history. History is advisory, a
// store failure only logs.
func (s *Server) recordTurn(ctx context.Context, sessionID string, result *agent.Result) {
	turn := &session.Turn{
		ID:            result.TurnID,
		SessionID:     sessionID,
		Question:      result.Question,
		Answer:        result.Answer,
		WebSearchUsed: result.WebSearchUsed,
		DocumentsUsed: result.DocumentsUsed,
		Degraded:      result.Degraded,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.sessions.Append(ctx, turn); err != nil {
		s.logger.Warn("failed to record turn %s: %v", result.TurnID, err)
	}
}

// IngestRequest is the body of POST /api/ingest.
type IngestRequest struct {
	// Dir is a server-local directory of pre-rendered page images.
	Dir string `json:"dir"`

	// Source labels the pages, e.g. the original file name.
	Source string `json:"source"`
}

// IngestResponse is the body of a successful ingest.
type IngestResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PagesIngested int    `json:"pages_ingested,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.pages == nil {
		sendJSONError(w, "Ingestion is not configured", http.StatusServiceUnavailable)
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Dir == "" {
		sendJSONError(w, "dir is required", http.StatusBadRequest)
		return
	}

	n, err := s.pages.IngestDirectory(r.Context(), req.Dir, req.Source)
	if err != nil {
		s.logger.Error("ingestion failed: %v", err)
		sendJSONError(w, "Ingestion failed", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(w, IngestResponse{
		Success:       true,
		Message:       "Pages ingested successfully",
		PagesIngested: n,
	})
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Turns     []*session.Turn `json:"turns"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			sendJSONError(w, "session_id is required", http.StatusBadRequest)
			return
		}
		turns, err := s.sessions.History(r.Context(), sessionID)
		if err != nil {
			s.logger.Error("failed to load history: %v", err)
			sendJSONError(w, "Failed to load history", http.StatusInternalServerError)
			return
		}
		sendJSONResponse(w, HistoryResponse{SessionID: sessionID, Turns: turns})

	case http.MethodDelete:
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			sendJSONError(w, "session_id is required", http.StatusBadRequest)
			return
		}
		if err := s.sessions.Clear(r.Context(), sessionID); err != nil {
			s.logger.Error("failed to clear history: %v", err)
			sendJSONError(w, "Failed to clear history", http.StatusInternalServerError)
			return
		}
		sendJSONResponse(w, map[string]any{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, map[string]any{
		"status":    "ok",
		"ingestion": s.pages != nil,
	})
}

func sendJSONResponse(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func sendJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message})
}
