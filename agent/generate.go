package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// generationTemperature keeps answers topically grounded while allowing some
// variation between attempts.
const generationTemperature = 0.2

const generationPrompt = `Based on the images provided above, please answer the following question: %s

Instructions:
1. Carefully examine all the images provided
2. Provide a comprehensive and accurate answer based on what you can observe in the images
3. If the information needed to answer the question is not clearly visible in the images, state this clearly
4. Be specific and reference details you can see in the images when possible
5. If multiple images are provided, consider information from all of them in your answer

Question: %s

Answer:`

// Generator produces an answer from a question and a mixed evidence set.
// Image documents become image inputs; text documents inform the prompt as
// plain context.
type Generator struct {
	model llms.Model
}

// NewGenerator creates a generator backed by the given model.
func NewGenerator(model llms.Model) *Generator {
	return &Generator{model: model}
}

// Generate builds one multimodal request over the evidence set and returns
// the answer text.
func (g *Generator) Generate(ctx context.Context, question string, docs []Document) (string, error) {
	var parts []llms.ContentPart
	var textBlobs []string

	for _, doc := range docs {
		if doc.IsText() {
			textBlobs = append(textBlobs, doc.Content.Data())
			continue
		}
		parts = append(parts, llms.ImageURLPart(doc.Content.Data()))
	}

	prompt := fmt.Sprintf(generationPrompt, question, question)
	if len(textBlobs) > 0 {
		prompt = fmt.Sprintf("Additional context from web search:\n%s\n\n%s",
			strings.Join(textBlobs, "\n\n"), prompt)
	}
	parts = append(parts, llms.TextPart(prompt))

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}

	resp, err := g.model.GenerateContent(ctx, messages, llms.WithTemperature(generationTemperature))
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}

	answer := strings.TrimSpace(firstChoice(resp))
	if answer == "" {
		return "", fmt.Errorf("generation returned no content")
	}
	return answer, nil
}

// fallbackAnswer is the labeled answer used when the generator is
// unavailable, so a turn still terminates with some answer text.
func fallbackAnswer(question string) string {
	return fmt.Sprintf("I apologize, but I encountered an error while processing the document evidence to answer your question: %s. Please try rephrasing your question or check that the documents were ingested correctly.", question)
}
