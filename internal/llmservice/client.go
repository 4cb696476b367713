// Package llmservice is the text-generation boundary.
package llmservice

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"doc-tutor/internal/config"
	"doc-tutor/internal/errs"
)

// Message is one chat message sent to the model.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

// Generator turns a system+user message list into plain response text.
type Generator interface {
	Generate(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// LangchainGenerator calls the configured model through langchaingo.
type LangchainGenerator struct {
	llm llms.Model
}

func NewGenerator(llmConfig *config.LLMConfig) (*LangchainGenerator, error) {
	var llm llms.Model
	var err error
	switch llmConfig.Provider {
	case "openai":
		llm, err = openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
	case "ollama", "":
		llm, err = ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	default:
		return nil, errs.Newf(errs.KindValidation, "unknown generation provider %q", llmConfig.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &LangchainGenerator{llm: llm}, nil
}

func (g *LangchainGenerator) Generate(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := schema.ChatMessageTypeHuman
		if msg.Role == "system" {
			role = schema.ChatMessageTypeSystem
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	resp, err := g.llm.GenerateContent(ctx, content, llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errs.New(errs.KindParse, "generation response had no choices")
	}
	return resp.Choices[0].Content, nil
}
