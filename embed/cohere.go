// Package embed provides a multimodal embedder backed by the Cohere embed
// API. Rendered page images and query text map into the same vector space,
// which is what lets text questions retrieve image pages.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
)

const (
	defaultBaseURL = "https://api.cohere.com/v2/embed"
	defaultModel   = "embed-v4.0"

	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

// Cohere embeds page images and query text with the Cohere multimodal embed
// endpoint. It implements langchaingo's embeddings.Embedder so it plugs
// straight into the vector store.
type Cohere struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ embeddings.Embedder = (*Cohere)(nil)

type CohereOption func(*Cohere)

// WithBaseURL overrides the embed endpoint URL.
func WithBaseURL(baseURL string) CohereOption {
	return func(c *Cohere) {
		c.baseURL = baseURL
	}
}

// WithModel overrides the embedding model name.
func WithModel(model string) CohereOption {
	return func(c *Cohere) {
		c.model = model
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) CohereOption {
	return func(c *Cohere) {
		c.client = client
	}
}

// NewCohere creates a Cohere embedder. If apiKey is empty, it tries the
// COHERE_API_KEY environment variable.
func NewCohere(apiKey string, opts ...CohereOption) (*Cohere, error) {
	if apiKey == "" {
		apiKey = os.Getenv("COHERE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("COHERE_API_KEY not set")
	}

	c := &Cohere{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		client:  &http.Client{Timeout: 60 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type embedRequest struct {
	Model          string   `json:"model"`
	InputType      string   `json:"input_type"`
	EmbeddingTypes []string `json:"embedding_types"`
	Texts          []string `json:"texts,omitempty"`
	Images         []string `json:"images,omitempty"`
}

type embedResponse struct {
	Embeddings struct {
		Float [][]float32 `json:"float"`
	} `json:"embeddings"`
}

// EmbedDocuments embeds stored inputs. Data URLs are sent as images, anything
// else as document text, one request per modality.
func (c *Cohere) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var images, plain []string
	var imageIdx, plainIdx []int
	for i, text := range texts {
		if isDataURL(text) {
			images = append(images, text)
			imageIdx = append(imageIdx, i)
		} else {
			plain = append(plain, text)
			plainIdx = append(plainIdx, i)
		}
	}

	if len(images) > 0 {
		embedded, err := c.embed(ctx, embedRequest{
			Model:          c.model,
			InputType:      inputTypeDocument,
			EmbeddingTypes: []string{"float"},
			Images:         images,
		})
		if err != nil {
			return nil, err
		}
		if len(embedded) != len(images) {
			return nil, fmt.Errorf("embedding count mismatch: sent %d images, got %d vectors", len(images), len(embedded))
		}
		for i, vec := range embedded {
			vectors[imageIdx[i]] = vec
		}
	}

	if len(plain) > 0 {
		embedded, err := c.embed(ctx, embedRequest{
			Model:          c.model,
			InputType:      inputTypeDocument,
			EmbeddingTypes: []string{"float"},
			Texts:          plain,
		})
		if err != nil {
			return nil, err
		}
		if len(embedded) != len(plain) {
			return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(plain), len(embedded))
		}
		for i, vec := range embedded {
			vectors[plainIdx[i]] = vec
		}
	}

	return vectors, nil
}

// EmbedQuery embeds a question for similarity search.
func (c *Cohere) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embedded, err := c.embed(ctx, embedRequest{
		Model:          c.model,
		InputType:      inputTypeQuery,
		EmbeddingTypes: []string{"float"},
		Texts:          []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(embedded) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: sent 1 query, got %d vectors", len(embedded))
	}
	return embedded[0], nil
}

func (c *Cohere) embed(ctx context.Context, reqBody embedRequest) ([][]float32, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cohere api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return decoded.Embeddings.Float, nil
}

// isDataURL reports whether the input is an inlined image rather than text.
func isDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}
