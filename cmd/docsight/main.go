// Command docsight answers questions about scanned documents: it serves the
// HTTP API, runs one-shot queries, and ingests rendered page images.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/kataras/golog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/docsight/docsight/agent"
	"github.com/docsight/docsight/embed"
	"github.com/docsight/docsight/log"
	"github.com/docsight/docsight/search"
	"github.com/docsight/docsight/server"
	"github.com/docsight/docsight/session"
	"github.com/docsight/docsight/session/memory"
	"github.com/docsight/docsight/session/postgres"
	"github.com/docsight/docsight/session/redis"
	"github.com/docsight/docsight/session/sqlite"
	"github.com/docsight/docsight/store"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	answerStyle = lipgloss.NewStyle().PaddingLeft(2)
	noteStyle   = lipgloss.NewStyle().Faint(true)
)

func main() {
	serverMode := flag.Bool("server", false, "Run in HTTP server mode")
	question := flag.String("query", "", "Ask a single question and exit")
	ingestDir := flag.String("ingest", "", "Directory of rendered page images to ingest")
	ingestSource := flag.String("source", "", "Source label for ingested pages (defaults to the directory name)")
	showGraph := flag.Bool("graph", false, "Print the decision graph as Mermaid and exit")
	port := flag.String("port", "", "Server port (overrides SERVER_PORT env var)")
	flag.Parse()

	cfg := LoadConfig()
	if *port != "" {
		cfg.ServerPort = *port
	}

	logger := log.NewGologLogger(golog.New())
	log.SetDefaultLogger(logger)
	ctx := context.Background()

	a, pages := buildAgent(cfg, logger)

	switch {
	case *showGraph:
		fmt.Println(a.Mermaid())

	case *ingestDir != "":
		if pages == nil {
			logger.Error("ingestion requires COHERE_API_KEY and a reachable Qdrant")
			os.Exit(1)
		}
		n, err := pages.IngestDirectory(ctx, *ingestDir, *ingestSource)
		if err != nil {
			logger.Error("ingestion failed: %v", err)
			os.Exit(1)
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("Ingested %d page(s) from %s", n, *ingestDir)))

	case *question != "":
		runQuery(ctx, a, *question)

	case *serverMode:
		runServer(cfg, a, pages, logger)

	default:
		flag.Usage()
	}
}

// buildAgent wires the model and adapters from configuration. A missing
// OpenAI key yields a degraded agent; missing retrieval or search
// credentials are fatal, the pipeline cannot run without its adapters.
func buildAgent(cfg Config, logger log.Logger) (*agent.Agent, *store.PageStore) {
	var model llms.Model
	if cfg.OpenAIKey != "" {
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		client, err := openai.New(opts...)
		if err != nil {
			logger.Error("failed to create OpenAI client: %v", err)
			os.Exit(1)
		}
		model = client
	} else {
		logger.Warn("OPENAI_API_KEY not set, running in degraded mode")
	}

	embedder, err := embed.NewCohere(cfg.CohereKey, embed.WithModel(cfg.EmbedModel))
	if err != nil {
		logger.Error("failed to create embedder: %v", err)
		os.Exit(1)
	}

	pages, err := store.New(store.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
		Embedder:   embedder,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to connect to document store: %v", err)
		os.Exit(1)
	}

	searcher, err := search.NewTavily(cfg.TavilyKey, search.WithRawContent(true))
	if err != nil {
		logger.Error("failed to create web search client: %v", err)
		os.Exit(1)
	}

	a, err := agent.New(agent.Config{
		Model:     model,
		Retriever: pages,
		Searcher:  searcher,
		TopK:      cfg.TopK,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to build agent: %v", err)
		os.Exit(1)
	}
	return a, pages
}

// runQuery answers one question on the command line.
func runQuery(ctx context.Context, a *agent.Agent, question string) {
	result, err := a.Run(ctx, question)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query failed:", err)
		os.Exit(1)
	}

	fmt.Println(labelStyle.Render("Question:"), question)
	fmt.Println(labelStyle.Render("Answer:"))
	fmt.Println(answerStyle.Render(result.Answer))

	note := fmt.Sprintf("turn %s, %d document(s)", result.TurnID, result.DocumentsUsed)
	if result.WebSearchUsed {
		note += ", web search used"
	}
	if result.Degraded {
		note += ", degraded"
	}
	fmt.Println(noteStyle.Render(note))
}

// runServer starts the HTTP API.
func runServer(cfg Config, a *agent.Agent, pages *store.PageStore, logger log.Logger) {
	sessions := buildSessionStore(cfg, logger)
	defer sessions.Close()

	srv, err := server.New(server.Config{
		Agent:    a,
		Pages:    pages,
		Sessions: sessions,
		Logger:   logger,
		Addr:     cfg.ServerHost + ":" + cfg.ServerPort,
	})
	if err != nil {
		logger.Error("failed to create server: %v", err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("docsight server"))
	fmt.Println(noteStyle.Render(fmt.Sprintf("listening on http://%s:%s", cfg.ServerHost, cfg.ServerPort)))

	if err := srv.Start(); err != nil {
		logger.Error("server error: %v", err)
		os.Exit(1)
	}
}

// buildSessionStore picks the history backend from configuration.
func buildSessionStore(cfg Config, logger log.Logger) session.Store {
	switch cfg.SessionStore {
	case "redis":
		return redis.New(redis.Options{Addr: cfg.RedisAddr})
	case "sqlite":
		s, err := sqlite.New(sqlite.Options{Path: cfg.SQLitePath})
		if err != nil {
			logger.Error("failed to open sqlite session store: %v", err)
			os.Exit(1)
		}
		return s
	case "postgres":
		s, err := postgres.New(context.Background(), postgres.Options{ConnString: cfg.PostgresURL})
		if err != nil {
			logger.Error("failed to open postgres session store: %v", err)
			os.Exit(1)
		}
		return s
	default:
		return memory.New()
	}
}
