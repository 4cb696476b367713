// Package vectorstore adapts a chromem-go collection to the pipeline's vector
// index contract: metadata-scoped upserts, filtered top-K queries, and
// exact-id deletion.
package vectorstore

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/philippgille/chromem-go"

	"doc-tutor/internal/config"
	"doc-tutor/internal/errs"
	"doc-tutor/internal/models"
)

const compress = false

// Store wraps one chromem collection holding every document's vectors.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	batchSize  int
}

// NewStore opens (or creates) the configured collection, persistent on disk
// unless in-memory mode is set.
func NewStore(vectorConfig *config.VectorDBConfig, batchSize int) (*Store, error) {
	var db *chromem.DB
	var err error
	if vectorConfig.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(vectorConfig.Path, compress)
		if err != nil {
			return nil, errs.Wrap(errs.KindStorage, err, "failed to open vector database")
		}
	}

	collection, err := db.GetOrCreateCollection(vectorConfig.Collection, nil, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err, "failed to create/get collection")
	}

	return &Store{db: db, collection: collection, batchSize: batchSize}, nil
}

// UpsertPageVectors writes one record per page with kind "page", batched to
// the backend's batch size.
func (s *Store) UpsertPageVectors(ctx context.Context, filename string, vectors map[int]models.EmbeddingVector) error {
	pages := make([]int, 0, len(vectors))
	for page := range vectors {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	docs := make([]chromem.Document, 0, len(pages))
	for _, page := range pages {
		docs = append(docs, chromem.Document{
			ID:        models.PageVectorID(filename, page),
			Content:   models.PageVectorID(filename, page),
			Embedding: vectors[page].Values,
			Metadata: map[string]string{
				models.MetadataFilename:  filename,
				models.MetadataPage:      strconv.Itoa(page),
				models.MetadataKind:      models.VectorKindPage,
				models.MetadataTimestamp: time.Now().UTC().Format(time.RFC3339),
			},
		})
	}

	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := s.collection.AddDocuments(ctx, docs[start:end], 1); err != nil {
			return errs.Wrap(errs.KindStorage, err, "failed to upsert page vectors")
		}
	}
	return nil
}

// UpsertFullTextVector writes the single whole-document record.
func (s *Store) UpsertFullTextVector(ctx context.Context, filename string, vector models.EmbeddingVector) error {
	doc := chromem.Document{
		ID:        models.FullVectorID(filename),
		Content:   models.FullVectorID(filename),
		Embedding: vector.Values,
		Metadata: map[string]string{
			models.MetadataFilename:  filename,
			models.MetadataKind:      models.VectorKindFull,
			models.MetadataTimestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to upsert full-text vector")
	}
	return nil
}

// QueryPageVector runs a similarity query scoped to one page of one document.
func (s *Store) QueryPageVector(ctx context.Context, filename string, page int, queryVector []float32, topK int) ([]models.QueryResult, error) {
	return s.query(ctx, queryVector, topK, map[string]string{
		models.MetadataFilename: filename,
		models.MetadataPage:     strconv.Itoa(page),
		models.MetadataKind:     models.VectorKindPage,
	})
}

// QueryDocumentPages runs a similarity query over every page vector of one
// document, returning the best-matching pages first.
func (s *Store) QueryDocumentPages(ctx context.Context, filename string, queryVector []float32, topK int) ([]models.QueryResult, error) {
	return s.query(ctx, queryVector, topK, map[string]string{
		models.MetadataFilename: filename,
		models.MetadataKind:     models.VectorKindPage,
	})
}

// QueryFullTextVector runs a similarity query scoped to the whole-document
// vector of one document.
func (s *Store) QueryFullTextVector(ctx context.Context, filename string, queryVector []float32, topK int) ([]models.QueryResult, error) {
	return s.query(ctx, queryVector, topK, map[string]string{
		models.MetadataFilename: filename,
		models.MetadataKind:     models.VectorKindFull,
	})
}

func (s *Store) query(ctx context.Context, queryVector []float32, topK int, where map[string]string) ([]models.QueryResult, error) {
	if len(queryVector) == 0 {
		return nil, errs.New(errs.KindValidation, "query vector is empty")
	}
	// chromem rejects nResults above the collection size.
	if count := s.collection.Count(); topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVector,
		NResults:       topK,
		Where:          where,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err, "similarity query failed")
	}

	out := make([]models.QueryResult, 0, len(results))
	for _, r := range results {
		out = append(out, models.QueryResult{
			ID:       r.ID,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		})
	}
	return out, nil
}

// DeleteDocumentVectors removes the full-text record and every page record of
// the document. totalPages is the page count recorded when the document was
// chunked, so exactly the written id set is enumerated.
func (s *Store) DeleteDocumentVectors(ctx context.Context, filename string, totalPages int) error {
	ids := make([]string, 0, totalPages+1)
	ids = append(ids, models.FullVectorID(filename))
	for page := 1; page <= totalPages; page++ {
		ids = append(ids, models.PageVectorID(filename, page))
	}
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to delete document vectors")
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *Store) Count() int {
	return s.collection.Count()
}
