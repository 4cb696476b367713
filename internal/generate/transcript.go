package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"doc-tutor/internal/config"
	"doc-tutor/internal/llmservice"
	"doc-tutor/internal/models"
)

// TranscriptGenerator produces a page's summary transcript.
type TranscriptGenerator struct {
	generator llmservice.Generator
	augmenter PageAugmenter
	sentences int
	maxTokens int
	maxInline int
}

func NewTranscriptGenerator(generator llmservice.Generator, augmenter PageAugmenter, cfg *config.Config) *TranscriptGenerator {
	return &TranscriptGenerator{
		generator: generator,
		augmenter: augmenter,
		sentences: cfg.RAG.TranscriptSentences,
		maxTokens: cfg.GenLLM.MaxTokens,
		maxInline: cfg.RAG.MaxContextLength,
	}
}

// Generate returns the transcript text for one page. The model response is
// used as-is beyond trimming; any failure yields the extractive fallback.
func (g *TranscriptGenerator) Generate(ctx context.Context, filename string, page int, pageText string) string {
	goal := fmt.Sprintf(models.TranscriptGoalTemplate, g.sentences)
	prompt := buildPrompt(ctx, g.augmenter, filename, page, goal, pageText, g.maxInline)

	resp, err := g.generator.Generate(ctx, []llmservice.Message{
		{Role: "system", Content: models.SystemPromptTemplate},
		{Role: "user", Content: prompt},
	}, g.maxTokens)
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Int("page", page).Msg("Transcript generation failed, using fallback")
		return FallbackTranscript(pageText, page, g.sentences)
	}

	transcript := strings.TrimSpace(resp)
	if transcript == "" {
		return FallbackTranscript(pageText, page, g.sentences)
	}
	return transcript
}

// FallbackTranscript is the deterministic replacement transcript: the first
// n sentences of the page text, or a fixed notice when the page is empty.
func FallbackTranscript(pageText string, page, sentences int) string {
	text := strings.TrimSpace(pageText)
	if text == "" {
		return fmt.Sprintf("Page %d contains no extractable text.", page)
	}

	parts := splitSentences(text)
	if len(parts) > sentences {
		parts = parts[:sentences]
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(text); i++ {
		current.WriteByte(text[i])
		if text[i] == '.' || text[i] == '!' || text[i] == '?' {
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}
	return sentences
}
