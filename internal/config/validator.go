package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if _, err := url.Parse(c.GenLLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "gen_llm.base_url",
			Message: "invalid base URL",
		})
	}

	if _, err := url.Parse(c.EmbedLLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "embed_llm.base_url",
			Message: "invalid base URL",
		})
	}

	if c.GenLLM.MaxTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "gen_llm.max_tokens",
			Message: "max_tokens must be positive",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.RAG.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "rag.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.RAG.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.top_k",
			Message: "top_k must be positive",
		})
	}

	if c.RAG.MaxContextLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.max_context_length",
			Message: "max_context_length must be positive",
		})
	}

	if c.RAG.VectorDimensions < 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.vector_dimensions",
			Message: "vector_dimensions must be positive",
		})
	}

	if c.RAG.EmbedRatePerSecond <= 0 {
		errors = append(errors, ValidationError{
			Field:   "rag.embed_rate_per_second",
			Message: "embed_rate_per_second must be positive",
		})
	}

	if c.RAG.UpsertBatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.upsert_batch_size",
			Message: "upsert_batch_size must be positive",
		})
	}

	return errors
}
