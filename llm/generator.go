// Package llm is the answer-generation collaborator: it sends a question and
// its retrieved context to an OpenAI-compatible chat model and returns the
// model's text.
package llm

import (
	"context"
	"fmt"
	"strings"

	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = "You are a helpful assistant. Answer using ONLY the provided context. " +
	"If the answer is not in the context, say: 'I don't know based on the provided documents.' " +
	"Be concise and cite which Document numbers you used in one short line at the end."

// Generator calls an OpenAI-compatible chat completions endpoint.
type Generator struct {
	apiKey       string
	baseURL      string
	defaultModel string
}

func NewGenerator(apiKey, baseURL, defaultModel string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generation API key is required")
	}

	return &Generator{
		apiKey:       apiKey,
		baseURL:      baseURL,
		defaultModel: defaultModel,
	}, nil
}

// DefaultModel returns the model used when a request does not name one.
func (g *Generator) DefaultModel() string { return g.defaultModel }

// Answer generates an answer to question grounded in contextText. The model
// name is passed through untouched; empty selects the configured default.
// Failures propagate to the caller, no retrying happens here.
func (g *Generator) Answer(ctx context.Context, question, contextText, model string) (string, error) {
	if model == "" {
		model = g.defaultModel
	}

	cm, err := openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
		APIKey:  g.apiKey,
		BaseURL: g.baseURL,
		Model:   model,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat model %s: %w", model, err)
	}

	msg, err := cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf("Question:\n%s\n\nContext:\n%s\n\nAnswer:", question, contextText)),
	})
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	return strings.TrimSpace(msg.Content), nil
}
