package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-tutor/internal/errs"
	"doc-tutor/internal/models"
	"doc-tutor/internal/store"
)

func sampleDocument() *models.ChunkedDocument {
	return &models.ChunkedDocument{
		ID:       "notes.pdf",
		FullText: "page one\npage two",
		PageChunks: map[int][]string{
			1: {"page one"},
			2: {"page two"},
		},
		TotalPages:  2,
		TotalChunks: 2,
	}
}

func TestMemoryStore_DocumentRoundtrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.StoreDocument(ctx, sampleDocument()))

	doc, err := s.GetDocument(ctx, "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", doc.ID)
	assert.Equal(t, 2, doc.TotalPages)
	assert.Equal(t, []string{"page one"}, doc.PageChunks[1])
}

func TestMemoryStore_StoreCopiesInput(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	original := sampleDocument()
	require.NoError(t, s.StoreDocument(ctx, original))
	original.PageChunks[1][0] = "mutated"

	doc, err := s.GetDocument(ctx, "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "page one", doc.PageChunks[1][0])
}

func TestMemoryStore_GetDocument_NotFound(t *testing.T) {
	s := store.NewMemoryStore()

	_, err := s.GetDocument(context.Background(), "missing.pdf")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestMemoryStore_PageResultsRoundtrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	transcripts := map[int]string{1: "summary one", 2: "summary two"}
	questions := map[int][]models.MCQ{
		1: {{ID: 1, Question: "Q1?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 2, Explanation: "e", PageNumber: 1}},
	}
	require.NoError(t, s.StorePageResults(ctx, "notes.pdf", transcripts, questions))

	gotT, err := s.GetTranscripts(ctx, "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, transcripts, gotT)

	gotQ, err := s.GetMCQs(ctx, "notes.pdf")
	require.NoError(t, err)
	require.Len(t, gotQ[1], 1)
	assert.Equal(t, 2, gotQ[1][0].CorrectOptionIndex)
}

func TestMemoryStore_PageResults_NotFound(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetTranscripts(ctx, "missing.pdf")
	assert.True(t, errs.IsNotFound(err))

	_, err = s.GetMCQs(ctx, "missing.pdf")
	assert.True(t, errs.IsNotFound(err))
}

func TestMemoryStore_StorePageResultsOverwrites(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.StorePageResults(ctx, "notes.pdf", map[int]string{1: "old"}, nil))
	require.NoError(t, s.StorePageResults(ctx, "notes.pdf", map[int]string{1: "new", 2: "added"}, nil))

	transcripts, err := s.GetTranscripts(ctx, "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "new", 2: "added"}, transcripts)
}

func TestMemoryStore_DeleteDocument(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.StoreDocument(ctx, sampleDocument()))
	require.NoError(t, s.StorePageResults(ctx, "notes.pdf", map[int]string{1: "summary"}, map[int][]models.MCQ{}))

	require.NoError(t, s.DeleteDocument(ctx, "notes.pdf"))

	_, err := s.GetDocument(ctx, "notes.pdf")
	assert.True(t, errs.IsNotFound(err))
	_, err = s.GetTranscripts(ctx, "notes.pdf")
	assert.True(t, errs.IsNotFound(err))
	_, err = s.GetMCQs(ctx, "notes.pdf")
	assert.True(t, errs.IsNotFound(err))
}

func TestMemoryStore_DeleteUnknownDocumentIsNoop(t *testing.T) {
	s := store.NewMemoryStore()
	assert.NoError(t, s.DeleteDocument(context.Background(), "missing.pdf"))
}
