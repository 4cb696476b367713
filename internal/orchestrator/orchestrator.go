// Package orchestrator drives the per-upload background workflow:
// extract pages, chunk, embed, persist, then generate a transcript and a
// question set for every page.
package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"doc-tutor/internal/chunker"
	"doc-tutor/internal/config"
	"doc-tutor/internal/embedding"
	"doc-tutor/internal/errs"
	"doc-tutor/internal/extract"
	"doc-tutor/internal/models"
	"doc-tutor/internal/store"
)

// Run states, logged as each stage begins.
const (
	stateExtracting = "extracting"
	stateChunking   = "chunking"
	stateEmbedding  = "embedding"
	stateStoring    = "storing"
	stateGenerating = "generating"
	stateDone       = "done"
	stateFailed     = "failed"
)

// Embedder covers the embedding calls the run makes.
type Embedder interface {
	Embed(ctx context.Context, text string) (models.EmbeddingVector, error)
	EmbedPages(ctx context.Context, pageChunks map[int][]string) map[int]models.EmbeddingVector
}

// VectorStore covers the vector index writes and deletes.
type VectorStore interface {
	UpsertPageVectors(ctx context.Context, filename string, vectors map[int]models.EmbeddingVector) error
	UpsertFullTextVector(ctx context.Context, filename string, vector models.EmbeddingVector) error
	DeleteDocumentVectors(ctx context.Context, filename string, totalPages int) error
}

// TranscriptGenerator and MCQGenerator never fail; they degrade to fallback
// content instead.
type TranscriptGenerator interface {
	Generate(ctx context.Context, filename string, page int, pageText string) string
}

type MCQGenerator interface {
	Generate(ctx context.Context, filename string, page int, pageText string) []models.MCQ
}

// Orchestrator runs one workflow per uploaded document. Concurrent runs for
// the same filename are serialized by a per-document lock; distinct documents
// share nothing but the downstream backends.
type Orchestrator struct {
	cfg         *config.Config
	embedder    Embedder
	vectors     VectorStore
	docs        store.DocumentStore
	transcripts TranscriptGenerator
	questions   MCQGenerator

	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

func New(cfg *config.Config, embedder Embedder, vectors VectorStore, docs store.DocumentStore, transcripts TranscriptGenerator, questions MCQGenerator) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		embedder:    embedder,
		vectors:     vectors,
		docs:        docs,
		transcripts: transcripts,
		questions:   questions,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Start launches a detached run. The caller gets no result; the outcome is
// observable through the stored per-page content.
func (o *Orchestrator) Start(filename string, data []byte) {
	go func() {
		if err := o.Run(context.Background(), filename, data); err != nil {
			log.Error().Err(err).Str("filename", filename).Msg("Background processing run failed")
		}
	}()
}

// Run executes the full workflow synchronously. Reprocessing a filename
// starts over from extraction and overwrites prior results.
func (o *Orchestrator) Run(ctx context.Context, filename string, data []byte) error {
	lock := o.lockFor(filename)
	lock.Lock()
	defer lock.Unlock()

	runLog := log.With().
		Str("run_id", uuid.NewString()).
		Str("filename", filename).
		Logger()

	runLog.Info().Str("state", stateExtracting).Msg("Processing document")
	extractor, err := extract.ForFilename(filename)
	if err != nil {
		return o.fail(runLog, err)
	}
	pages, err := extractor.Extract(data)
	if err != nil {
		return o.fail(runLog, err)
	}

	return o.process(ctx, runLog, filename, pages)
}

// RunPages is the entry point when page text is already available (tests,
// pre-extracted uploads).
func (o *Orchestrator) RunPages(ctx context.Context, filename string, pages []string) error {
	lock := o.lockFor(filename)
	lock.Lock()
	defer lock.Unlock()

	runLog := log.With().
		Str("run_id", uuid.NewString()).
		Str("filename", filename).
		Logger()

	return o.process(ctx, runLog, filename, pages)
}

func (o *Orchestrator) process(ctx context.Context, runLog zerolog.Logger, filename string, pages []string) error {
	runLog.Info().Str("state", stateChunking).Int("pages", len(pages)).Msg("Chunking document")
	doc, err := chunker.BuildDocument(filename, pages, o.cfg.RAG.ChunkSize, o.cfg.RAG.ChunkOverlap)
	if err != nil {
		// Bad chunk parameters are a configuration bug, not transient data.
		return o.fail(runLog, err)
	}

	runLog.Info().Str("state", stateEmbedding).Msg("Embedding pages")
	pageVectors := o.embedder.EmbedPages(ctx, doc.PageChunks)
	if len(pageVectors) < doc.TotalPages {
		runLog.Warn().
			Int("embedded", len(pageVectors)).
			Int("total", doc.TotalPages).
			Msg("Some pages were skipped during embedding")
	}

	var fullVector *models.EmbeddingVector
	fullText := embedding.Truncate(doc.FullText, o.cfg.RAG.MaxEmbedInputChars)
	if strings.TrimSpace(fullText) != "" {
		vector, err := o.embedder.Embed(ctx, fullText)
		if err != nil {
			runLog.Error().Err(err).Msg("Skipping full-text embedding")
		} else {
			fullVector = &vector
		}
	}

	runLog.Info().Str("state", stateStoring).Msg("Persisting document and vectors")
	if err := o.docs.StoreDocument(ctx, doc); err != nil {
		runLog.Error().Err(err).Msg("Failed to store chunked document")
	}
	if len(pageVectors) > 0 {
		if err := o.vectors.UpsertPageVectors(ctx, filename, pageVectors); err != nil {
			runLog.Error().Err(err).Msg("Failed to upsert page vectors")
		}
	}
	if fullVector != nil {
		if err := o.vectors.UpsertFullTextVector(ctx, filename, *fullVector); err != nil {
			runLog.Error().Err(err).Msg("Failed to upsert full-text vector")
		}
	}

	// Sequential page loop: backpressure against the generation backend.
	// A single page's failure degrades to fallback content inside the
	// generators and never stops the loop.
	transcripts := make(map[int]string, doc.TotalPages)
	questions := make(map[int][]models.MCQ, doc.TotalPages)
	for page := 1; page <= doc.TotalPages; page++ {
		runLog.Info().Str("state", stateGenerating).Int("page", page).Msg("Generating page content")
		pageText := strings.Join(doc.PageChunks[page], "\n")
		transcripts[page] = o.transcripts.Generate(ctx, filename, page, pageText)
		questions[page] = o.questions.Generate(ctx, filename, page, pageText)
	}

	if err := o.docs.StorePageResults(ctx, filename, transcripts, questions); err != nil {
		// No partial retry: the run is abandoned and the document must be
		// reprocessed before page content becomes available.
		return o.fail(runLog, errs.Wrap(errs.KindStorage, err, "failed to store page results"))
	}

	runLog.Info().Str("state", stateDone).Int("pages", doc.TotalPages).Msg("Processing complete")
	return nil
}

// Delete removes the document row, its generated content, and exactly the
// vector ids that were written for it.
func (o *Orchestrator) Delete(ctx context.Context, filename string) error {
	lock := o.lockFor(filename)
	lock.Lock()
	defer lock.Unlock()

	doc, err := o.docs.GetDocument(ctx, filename)
	if err != nil {
		return err
	}
	if err := o.vectors.DeleteDocumentVectors(ctx, filename, doc.TotalPages); err != nil {
		return err
	}
	return o.docs.DeleteDocument(ctx, filename)
}

func (o *Orchestrator) fail(runLog zerolog.Logger, err error) error {
	runLog.Error().Err(err).Str("state", stateFailed).Msg("Processing run failed")
	return err
}

func (o *Orchestrator) lockFor(filename string) *sync.Mutex {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	lock, ok := o.locks[filename]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[filename] = lock
	}
	return lock
}
