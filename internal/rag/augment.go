// Package rag retrieves the most relevant stored chunks for a goal and builds
// the augmented prompt sent to the text-generation model.
package rag

import (
	"strings"

	"doc-tutor/internal/models"
)

const chunkSeparator = "\n\n"

// Augment concatenates chunk texts in ranked order, stopping before the
// running length would exceed maxContextLength, and records per-chunk source
// attribution in inclusion order. It is pure: no I/O, deterministic for a
// given input.
func Augment(goal string, chunks []models.ScoredChunk, maxContextLength int) *models.AugmentedPromptData {
	var relevant strings.Builder
	var sources []models.Source

	for _, chunk := range chunks {
		next := len(chunk.Text)
		if relevant.Len() > 0 {
			next += len(chunkSeparator)
		}
		if relevant.Len()+next > maxContextLength {
			break
		}
		if relevant.Len() > 0 {
			relevant.WriteString(chunkSeparator)
		}
		relevant.WriteString(chunk.Text)
		sources = append(sources, models.Source{PageNumber: chunk.PageNumber, Score: chunk.Score})
	}

	var prompt strings.Builder
	prompt.WriteString(models.AugmentPreamble)
	prompt.WriteString("\n\n")
	prompt.WriteString(relevant.String())
	prompt.WriteString("\n\n")
	prompt.WriteString(goal)

	return &models.AugmentedPromptData{
		OriginalGoal:    goal,
		RelevantText:    relevant.String(),
		AugmentedPrompt: prompt.String(),
		Sources:         sources,
	}
}
