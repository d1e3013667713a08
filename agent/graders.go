package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// maxGroundingImages caps how many page images are sent with one grounding
// check, to stay inside request size limits.
const maxGroundingImages = 3

const relevanceImagePrompt = `You are a grader assessing relevance of a retrieved image document to a user question.

User question: %s

Instructions:
1. Carefully examine the image above
2. If the image contains visual information, text, or content related to the question, grade it as relevant
3. Give a binary score 'yes' or 'no' to indicate whether the document is relevant to the question

Respond with just 'yes' if relevant or 'no' if not relevant.`

const relevanceTextPrompt = `You are a grader assessing relevance of a retrieved document to a user question.

Document content: %s

User question: %s

Instructions:
1. If the document contains keywords or semantic meaning related to the question, grade it as relevant
2. Give a binary score 'yes' or 'no' to indicate whether the document is relevant to the question

Respond with just 'yes' if relevant or 'no' if not relevant.`

const groundingPrompt = `You are a grader assessing whether an answer is grounded in / supported by the images provided above.

Generation to evaluate: %s

Instructions:
1. Carefully examine the images provided above
2. Determine if the generation is supported by what you can see in the images
3. Look for specific details, facts, or information in the images that support or contradict the generation
4. Give a binary score 'yes' or 'no'. 'Yes' means that the answer is grounded in / supported by the set of images

Respond with just 'yes' if the generation is grounded in the images, or 'no' if it is not grounded.`

const answerPrompt = `You are a grader assessing whether an answer addresses / resolves a question.
Give a binary score 'yes' or 'no'. 'Yes' means that the answer resolves the question.

User question: %s

Answer: %s

Respond with just 'yes' or 'no'.`

// RelevanceGrader decides, per document, whether it is relevant to a
// question. Image documents are graded visually, text documents textually.
type RelevanceGrader struct {
	model llms.Model
}

// NewRelevanceGrader creates a relevance grader backed by the given model.
func NewRelevanceGrader(model llms.Model) *RelevanceGrader {
	return &RelevanceGrader{model: model}
}

// Grade returns whether the document is relevant to the question. An error
// means the classifier was unavailable, which is distinct from "not
// relevant".
func (g *RelevanceGrader) Grade(ctx context.Context, question string, doc Document) (bool, error) {
	var parts []llms.ContentPart
	if doc.IsText() {
		parts = []llms.ContentPart{
			llms.TextPart(fmt.Sprintf(relevanceTextPrompt, doc.Content.Data(), question)),
		}
	} else {
		parts = []llms.ContentPart{
			llms.ImageURLPart(doc.Content.Data()),
			llms.TextPart(fmt.Sprintf(relevanceImagePrompt, question)),
		}
	}

	return binaryScore(ctx, g.model, parts)
}

// GroundingGrader decides whether a generation is supported by its image
// evidence.
type GroundingGrader struct {
	model llms.Model
}

// NewGroundingGrader creates a grounding grader backed by the given model.
func NewGroundingGrader(model llms.Model) *GroundingGrader {
	return &GroundingGrader{model: model}
}

// Grade returns whether the generation is grounded in the image-bearing
// documents. Text documents are never sent; grounding is only checked
// against page images, capped at the first maxGroundingImages of them.
func (g *GroundingGrader) Grade(ctx context.Context, docs []Document, generation string) (bool, error) {
	var parts []llms.ContentPart
	for _, doc := range imageSubset(docs) {
		if len(parts) == maxGroundingImages {
			break
		}
		parts = append(parts, llms.ImageURLPart(doc.Content.Data()))
	}
	parts = append(parts, llms.TextPart(fmt.Sprintf(groundingPrompt, generation)))

	return binaryScore(ctx, g.model, parts)
}

// AnswerGrader decides whether a generation actually addresses the question.
type AnswerGrader struct {
	model llms.Model
}

// NewAnswerGrader creates an answer grader backed by the given model.
func NewAnswerGrader(model llms.Model) *AnswerGrader {
	return &AnswerGrader{model: model}
}

// Grade returns whether the generation resolves the question.
func (g *AnswerGrader) Grade(ctx context.Context, question, generation string) (bool, error) {
	parts := []llms.ContentPart{
		llms.TextPart(fmt.Sprintf(answerPrompt, question, generation)),
	}
	return binaryScore(ctx, g.model, parts)
}

// binaryScore runs a yes/no classification and parses the answer leniently:
// any response mentioning "yes" counts as yes.
func binaryScore(ctx context.Context, model llms.Model, parts []llms.ContentPart) (bool, error) {
	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}

	resp, err := model.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return false, fmt.Errorf("grading call failed: %w", err)
	}

	text := strings.ToLower(strings.TrimSpace(firstChoice(resp)))
	return strings.Contains(text, "yes"), nil
}
