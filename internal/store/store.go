// Package store persists chunked documents and the generated page-keyed
// content behind an injected port, so pipeline state never lives in
// process-wide maps.
package store

import (
	"context"

	"doc-tutor/internal/models"
)

// DocumentStore is the persistence port used by the pipeline. StoreDocument
// is an upsert by document id; reprocessing a filename overwrites the prior
// row. GetDocument returns a not-found error for unknown ids.
type DocumentStore interface {
	StoreDocument(ctx context.Context, doc *models.ChunkedDocument) error
	GetDocument(ctx context.Context, filename string) (*models.ChunkedDocument, error)
	DeleteDocument(ctx context.Context, filename string) error

	// StorePageResults writes both page-keyed blobs for a document in one
	// call: page -> transcript text and page -> MCQ list.
	StorePageResults(ctx context.Context, filename string, transcripts map[int]string, questions map[int][]models.MCQ) error
	GetTranscripts(ctx context.Context, filename string) (map[int]string, error)
	GetMCQs(ctx context.Context, filename string) (map[int][]models.MCQ, error)
}
