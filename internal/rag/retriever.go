package rag

import (
	"context"
	"strconv"

	"doc-tutor/internal/config"
	"doc-tutor/internal/embedding"
	"doc-tutor/internal/errs"
	"doc-tutor/internal/models"
	"doc-tutor/internal/store"
)

// Embedder embeds a single query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (models.EmbeddingVector, error)
}

// VectorIndex answers scoped similarity queries.
type VectorIndex interface {
	QueryPageVector(ctx context.Context, filename string, page int, queryVector []float32, topK int) ([]models.QueryResult, error)
	QueryDocumentPages(ctx context.Context, filename string, queryVector []float32, topK int) ([]models.QueryResult, error)
}

// Retriever embeds a query, asks the vector index for the relevant scope, and
// resolves hit text through the document store. Chunks are stored as text, so
// nothing is re-embedded on the read path.
type Retriever struct {
	embedder         Embedder
	vectors          VectorIndex
	docs             store.DocumentStore
	topK             int
	maxContextLength int
	maxEmbedInput    int
}

func NewRetriever(embedder Embedder, vectors VectorIndex, docs store.DocumentStore, ragConfig *config.RAGConfig) *Retriever {
	return &Retriever{
		embedder:         embedder,
		vectors:          vectors,
		docs:             docs,
		topK:             ragConfig.TopK,
		maxContextLength: ragConfig.MaxContextLength,
		maxEmbedInput:    ragConfig.MaxEmbedInputChars,
	}
}

// AugmentForPage builds the augmented prompt for one page of a document. It
// fails with a not-found error when the document or the page's vector is
// missing, which callers treat as "no context available".
func (r *Retriever) AugmentForPage(ctx context.Context, filename string, page int, goal string) (*models.AugmentedPromptData, error) {
	doc, err := r.docs.GetDocument(ctx, filename)
	if err != nil {
		return nil, err
	}
	chunks, ok := doc.PageChunks[page]
	if !ok {
		return nil, errs.Newf(errs.KindNotFound, "page %d of %q has no chunks", page, filename)
	}

	queryVector, err := r.embedder.Embed(ctx, embedding.Truncate(goal, r.maxEmbedInput))
	if err != nil {
		return nil, err
	}

	hits, err := r.vectors.QueryPageVector(ctx, filename, page, queryVector.Values, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, errs.Newf(errs.KindNotFound, "no vector stored for page %d of %q", page, filename)
	}

	scored := make([]models.ScoredChunk, 0, len(chunks))
	for _, text := range chunks {
		scored = append(scored, models.ScoredChunk{
			Text:       text,
			PageNumber: page,
			Score:      hits[0].Score,
		})
	}
	return Augment(goal, scored, r.maxContextLength), nil
}

// AugmentForQuery builds the augmented prompt for an ad-hoc question against
// a whole document: the top-K pages by similarity contribute their chunks in
// ranked order.
func (r *Retriever) AugmentForQuery(ctx context.Context, filename, query string) (*models.AugmentedPromptData, error) {
	doc, err := r.docs.GetDocument(ctx, filename)
	if err != nil {
		return nil, err
	}

	queryVector, err := r.embedder.Embed(ctx, embedding.Truncate(query, r.maxEmbedInput))
	if err != nil {
		return nil, err
	}

	topK := r.topK
	if topK > doc.TotalPages {
		topK = doc.TotalPages
	}
	hits, err := r.vectors.QueryDocumentPages(ctx, filename, queryVector.Values, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, errs.Newf(errs.KindNotFound, "no vectors stored for %q", filename)
	}

	var scored []models.ScoredChunk
	for _, hit := range hits {
		page, err := strconv.Atoi(hit.Metadata[models.MetadataPage])
		if err != nil {
			continue
		}
		for _, text := range doc.PageChunks[page] {
			scored = append(scored, models.ScoredChunk{
				Text:       text,
				PageNumber: page,
				Score:      hit.Score,
			})
		}
	}
	return Augment(query, scored, r.maxContextLength), nil
}
