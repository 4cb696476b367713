// Package generate builds per-page study content: transcripts and
// multiple-choice question sets. Generators never return errors; any failure
// degrades to deterministic fallback content so the page loop keeps moving.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"doc-tutor/internal/config"
	"doc-tutor/internal/embedding"
	"doc-tutor/internal/llmservice"
	"doc-tutor/internal/models"
)

// PageAugmenter supplies retrieval-augmented prompts for a page.
type PageAugmenter interface {
	AugmentForPage(ctx context.Context, filename string, page int, goal string) (*models.AugmentedPromptData, error)
}

// MCQGenerator produces a page's question set.
type MCQGenerator struct {
	generator     llmservice.Generator
	augmenter     PageAugmenter
	count         int
	maxTokens     int
	minTextLength int
	maxInline     int
}

func NewMCQGenerator(generator llmservice.Generator, augmenter PageAugmenter, cfg *config.Config) *MCQGenerator {
	return &MCQGenerator{
		generator:     generator,
		augmenter:     augmenter,
		count:         cfg.RAG.QuestionsPerPage,
		maxTokens:     cfg.GenLLM.MaxTokens,
		minTextLength: cfg.RAG.MinTextLength,
		maxInline:     cfg.RAG.MaxContextLength,
	}
}

// Generate returns the MCQs for one page. Input below the minimum length gets
// the fallback set without a backend call; generation or parse failures also
// fall back.
func (g *MCQGenerator) Generate(ctx context.Context, filename string, page int, pageText string) []models.MCQ {
	if len(strings.TrimSpace(pageText)) < g.minTextLength {
		return FallbackMCQs(page)
	}

	goal := fmt.Sprintf(models.McqGoalTemplate, g.count)
	prompt := buildPrompt(ctx, g.augmenter, filename, page, goal, pageText, g.maxInline)

	resp, err := g.generator.Generate(ctx, []llmservice.Message{
		{Role: "system", Content: models.SystemPromptTemplate},
		{Role: "user", Content: prompt},
	}, g.maxTokens)
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Int("page", page).Msg("MCQ generation failed, using fallback")
		return FallbackMCQs(page)
	}

	mcqs, err := parseMCQs(resp, page)
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Int("page", page).Msg("MCQ response unparseable, using fallback")
		return FallbackMCQs(page)
	}
	return mcqs
}

// rawMCQ mirrors the JSON shape requested from the model. Missing fields get
// defaults during validation.
type rawMCQ struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex *int     `json:"correct_option_index"`
	Explanation        string   `json:"explanation"`
}

func parseMCQs(resp string, page int) ([]models.MCQ, error) {
	arr, err := extractJSONArray(resp)
	if err != nil {
		return nil, err
	}

	var raw []rawMCQ
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		return nil, err
	}

	var mcqs []models.MCQ
	for _, r := range raw {
		question := strings.TrimSpace(r.Question)
		if question == "" {
			continue
		}

		options := r.Options
		if len(options) > models.OptionsPerQuestion {
			options = options[:models.OptionsPerQuestion]
		}
		for len(options) < models.OptionsPerQuestion {
			options = append(options, fmt.Sprintf("Option %d", len(options)+1))
		}

		correct := 0
		if r.CorrectOptionIndex != nil && *r.CorrectOptionIndex >= 0 && *r.CorrectOptionIndex < models.OptionsPerQuestion {
			correct = *r.CorrectOptionIndex
		}

		explanation := strings.TrimSpace(r.Explanation)
		if explanation == "" {
			explanation = "See the source page for details."
		}

		mcqs = append(mcqs, models.MCQ{
			ID:                 len(mcqs) + 1,
			Question:           question,
			Options:            options,
			CorrectOptionIndex: correct,
			Explanation:        explanation,
			PageNumber:         page,
		})
	}
	if len(mcqs) == 0 {
		return nil, fmt.Errorf("no valid questions in response")
	}
	return mcqs, nil
}

// FallbackMCQs is the fixed-shape question set used when generation cannot
// produce one.
func FallbackMCQs(page int) []models.MCQ {
	return []models.MCQ{
		{
			ID:       1,
			Question: fmt.Sprintf("What is the main topic of page %d?", page),
			Options: []string{
				"The subject introduced at the top of the page",
				"An unrelated appendix",
				"The bibliography",
				"The table of contents",
			},
			CorrectOptionIndex: 0,
			Explanation:        "Review the page text to identify its main topic.",
			PageNumber:         page,
		},
		{
			ID:       2,
			Question: fmt.Sprintf("Which statement best reflects the content of page %d?", page),
			Options: []string{
				"A summary of the page's key points",
				"A list of unrelated definitions",
				"Advertising material",
				"Blank filler text",
			},
			CorrectOptionIndex: 0,
			Explanation:        "The page presents its key points in order.",
			PageNumber:         page,
		},
	}
}

// buildPrompt prefers the retrieval-augmented prompt and falls back to the
// raw goal with the truncated page text inlined when no context is stored.
func buildPrompt(ctx context.Context, augmenter PageAugmenter, filename string, page int, goal, pageText string, maxInline int) string {
	if augmenter != nil {
		data, err := augmenter.AugmentForPage(ctx, filename, page, goal)
		if err == nil {
			return data.AugmentedPrompt
		}
		log.Debug().Err(err).Str("filename", filename).Int("page", page).Msg("No augmentation context, using raw page text")
	}
	return goal + "\n\nText:\n" + embedding.Truncate(pageText, maxInline)
}
