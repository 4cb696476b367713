package store

import (
	"context"
	"sync"

	"doc-tutor/internal/errs"
	"doc-tutor/internal/models"
)

// MemoryStore is a mutex-guarded in-memory DocumentStore, used in tests and
// for single-process runs without Postgres.
type MemoryStore struct {
	mtx         sync.RWMutex
	documents   map[string]*models.ChunkedDocument
	transcripts map[string]map[int]string
	questions   map[string]map[int][]models.MCQ
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents:   make(map[string]*models.ChunkedDocument),
		transcripts: make(map[string]map[int]string),
		questions:   make(map[string]map[int][]models.MCQ),
	}
}

func (s *MemoryStore) StoreDocument(_ context.Context, doc *models.ChunkedDocument) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cpy := *doc
	cpy.PageChunks = make(map[int][]string, len(doc.PageChunks))
	for page, chunks := range doc.PageChunks {
		cpy.PageChunks[page] = append([]string(nil), chunks...)
	}
	s.documents[doc.ID] = &cpy
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, filename string) (*models.ChunkedDocument, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	doc, ok := s.documents[filename]
	if !ok {
		return nil, errs.Newf(errs.KindNotFound, "document %q not found", filename)
	}
	cpy := *doc
	return &cpy, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, filename string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.documents, filename)
	delete(s.transcripts, filename)
	delete(s.questions, filename)
	return nil
}

func (s *MemoryStore) StorePageResults(_ context.Context, filename string, transcripts map[int]string, questions map[int][]models.MCQ) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tCopy := make(map[int]string, len(transcripts))
	for page, text := range transcripts {
		tCopy[page] = text
	}
	qCopy := make(map[int][]models.MCQ, len(questions))
	for page, mcqs := range questions {
		qCopy[page] = append([]models.MCQ(nil), mcqs...)
	}
	s.transcripts[filename] = tCopy
	s.questions[filename] = qCopy
	return nil
}

func (s *MemoryStore) GetTranscripts(_ context.Context, filename string) (map[int]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	transcripts, ok := s.transcripts[filename]
	if !ok {
		return nil, errs.Newf(errs.KindNotFound, "transcript content for %q not found", filename)
	}
	out := make(map[int]string, len(transcripts))
	for page, text := range transcripts {
		out[page] = text
	}
	return out, nil
}

func (s *MemoryStore) GetMCQs(_ context.Context, filename string) (map[int][]models.MCQ, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	questions, ok := s.questions[filename]
	if !ok {
		return nil, errs.Newf(errs.KindNotFound, "mcq content for %q not found", filename)
	}
	out := make(map[int][]models.MCQ, len(questions))
	for page, mcqs := range questions {
		out[page] = append([]models.MCQ(nil), mcqs...)
	}
	return out, nil
}
