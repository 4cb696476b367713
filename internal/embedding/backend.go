package embedding

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"doc-tutor/internal/config"
	"doc-tutor/internal/errs"
)

// Backend issues a single embedding call against the model server. The
// response shape varies by provider, so it is returned undecoded and
// normalized by the caller.
type Backend interface {
	Embed(ctx context.Context, text string) (any, error)
}

// NewBackend builds the configured backend.
func NewBackend(llmConfig *config.LLMConfig) (Backend, error) {
	switch llmConfig.Provider {
	case "openai":
		return newOpenAIBackend(llmConfig)
	case "ollama", "":
		return newOllamaBackend(llmConfig)
	default:
		return nil, errs.Newf(errs.KindValidation, "unknown embedding provider %q", llmConfig.Provider)
	}
}

// ollamaBackend returns the raw batch response, one vector per input text.
type ollamaBackend struct {
	llm *ollama.LLM
}

func newOllamaBackend(llmConfig *config.LLMConfig) (*ollamaBackend, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return &ollamaBackend{llm: llm}, nil
}

func (b *ollamaBackend) Embed(ctx context.Context, text string) (any, error) {
	vectors, err := b.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// openaiBackend wraps an OpenAI-compatible endpoint and yields flat vectors.
type openaiBackend struct {
	embedder *embeddings.EmbedderImpl
}

func newOpenAIBackend(llmConfig *config.LLMConfig) (*openaiBackend, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &openaiBackend{embedder: embedder}, nil
}

func (b *openaiBackend) Embed(ctx context.Context, text string) (any, error) {
	vector, err := b.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return vector, nil
}
