package main

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// LLM configuration
	OpenAIKey     string
	Model         string
	OpenAIBaseURL string

	// Embedding configuration
	CohereKey  string
	EmbedModel string

	// Vector store configuration
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	TopK             int

	// Web search configuration
	TavilyKey string

	// Session store configuration
	SessionStore string // "memory", "redis", "sqlite" or "postgres"
	RedisAddr    string
	SQLitePath   string
	PostgresURL  string
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. Missing API keys are not fatal here: the agent degrades and the
// capability check reports what is absent.
func LoadConfig() Config {
	return Config{
		ServerHost:       getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		Model:            getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		CohereKey:        os.Getenv("COHERE_API_KEY"),
		EmbedModel:       getEnv("COHERE_EMBED_MODEL", "embed-v4.0"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "pdf_pages"),
		TopK:             getEnvInt("TOP_K", 3),
		TavilyKey:        os.Getenv("TAVILY_API_KEY"),
		SessionStore:     getEnv("SESSION_STORE", "memory"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		SQLitePath:       getEnv("SQLITE_PATH", "docsight.db"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
