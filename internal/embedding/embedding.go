// Package embedding turns text into fixed-dimension vectors via an external
// model call, with retry on transient failure.
package embedding

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"doc-tutor/internal/config"
	"doc-tutor/internal/errs"
	"doc-tutor/internal/models"
)

// Embedder wraps a Backend with response normalization and a bounded retry
// policy. Retries are local to a single call; the batch path adds a
// client-side rate limit between calls instead.
type Embedder struct {
	backend       Backend
	maxRetries    int
	retryDelay    time.Duration
	maxInputChars int
	limiter       *rate.Limiter
}

func NewEmbedder(backend Backend, ragConfig *config.RAGConfig) *Embedder {
	return &Embedder{
		backend:       backend,
		maxRetries:    ragConfig.MaxRetries,
		retryDelay:    ragConfig.RetryDelay,
		maxInputChars: ragConfig.MaxEmbedInputChars,
		limiter:       rate.NewLimiter(rate.Limit(ragConfig.EmbedRatePerSecond), 1),
	}
}

// Embed returns the vector for text. Retryable backend failures are retried
// up to the configured budget with a delay that grows linearly per attempt;
// fatal failures and unrecognized response shapes propagate immediately.
// The caller is responsible for truncating text to the model's input limit.
func (e *Embedder) Embed(ctx context.Context, text string) (models.EmbeddingVector, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return models.EmbeddingVector{}, errs.Wrap(errs.KindEmbedding, ctx.Err(), "embedding canceled")
		default:
		}

		if attempt > 0 {
			time.Sleep(e.retryDelay * time.Duration(attempt))
		}

		resp, err := e.backend.Embed(ctx, text)
		if err == nil {
			values, normErr := normalizeVector(resp)
			if normErr != nil {
				return models.EmbeddingVector{}, normErr
			}
			return models.EmbeddingVector{Values: values, Dimensions: len(values)}, nil
		}

		if !retryable(err) {
			return models.EmbeddingVector{}, errs.Wrap(errs.KindEmbedding, err, "embedding backend rejected request")
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("Retryable embedding failure")
		lastErr = err
	}
	return models.EmbeddingVector{}, errs.Wrap(errs.KindEmbedding, lastErr, "embedding backend failed after retries")
}

// EmbedPages embeds one vector per page by concatenating the page's chunks,
// capped to the model input limit. A page whose embedding fails is logged and
// skipped, so the result may be a strict subset of the input pages. Pages are
// processed in order with a fixed pause between calls.
func (e *Embedder) EmbedPages(ctx context.Context, pageChunks map[int][]string) map[int]models.EmbeddingVector {
	pages := make([]int, 0, len(pageChunks))
	for page := range pageChunks {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	vectors := make(map[int]models.EmbeddingVector, len(pages))
	for _, page := range pages {
		if err := e.limiter.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("Embedding rate limiter interrupted")
			break
		}

		text := Truncate(strings.Join(pageChunks[page], "\n"), e.maxInputChars)
		if strings.TrimSpace(text) == "" {
			continue
		}

		vector, err := e.Embed(ctx, text)
		if err != nil {
			log.Error().Err(err).Int("page", page).Msg("Skipping page embedding")
			continue
		}
		vectors[page] = vector
	}
	return vectors
}

// Truncate caps text to max characters.
func Truncate(text string, max int) string {
	if max > 0 && len(text) > max {
		return text[:max]
	}
	return text
}

// retryable classifies a backend failure. Transient upstream errors are worth
// retrying; bad input and authentication failures are not.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	fatal := []string{
		"unauthorized", "invalid api key", "authentication", "bad request", "status code: 400", "status code: 401",
	}
	for _, marker := range fatal {
		if strings.Contains(msg, marker) {
			return false
		}
	}

	transient := []string{
		"timeout", "timed out", "connection refused", "connection reset",
		"temporarily", "too many requests", "rate limit",
		"status code: 429", "status code: 500", "status code: 502", "status code: 503",
		"internal server error", "service unavailable", "eof",
	}
	for _, marker := range transient {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
