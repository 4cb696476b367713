package vectorstore_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-tutor/internal/config"
	"doc-tutor/internal/models"
	"doc-tutor/internal/vectorstore"
)

func newTestStore(t *testing.T, batchSize int) *vectorstore.Store {
	t.Helper()
	s, err := vectorstore.NewStore(&config.VectorDBConfig{
		Collection: "test_collection",
		InMemory:   true,
	}, batchSize)
	require.NoError(t, err)
	return s
}

func vec(values ...float32) models.EmbeddingVector {
	return models.EmbeddingVector{Values: values, Dimensions: len(values)}
}

func TestUpsertAndQueryPageVector(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	err := s.UpsertPageVectors(ctx, "lecture.pdf", map[int]models.EmbeddingVector{
		1: vec(1, 0, 0),
		2: vec(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count())

	hits, err := s.QueryPageVector(ctx, "lecture.pdf", 2, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "lecture.pdf:page:2", hits[0].ID)
	assert.Equal(t, "lecture.pdf", hits[0].Metadata[models.MetadataFilename])
	assert.Equal(t, "2", hits[0].Metadata[models.MetadataPage])
	assert.Equal(t, models.VectorKindPage, hits[0].Metadata[models.MetadataKind])
	assert.NotEmpty(t, hits[0].Metadata[models.MetadataTimestamp])
}

func TestQueryDocumentPages_RankedBestFirst(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	err := s.UpsertPageVectors(ctx, "lecture.pdf", map[int]models.EmbeddingVector{
		1: vec(1, 0, 0),
		2: vec(0, 1, 0),
		3: vec(0.9, 0.1, 0),
	})
	require.NoError(t, err)

	hits, err := s.QueryDocumentPages(ctx, "lecture.pdf", []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "1", hits[0].Metadata[models.MetadataPage])
	assert.Equal(t, "3", hits[1].Metadata[models.MetadataPage])
	assert.Equal(t, "2", hits[2].Metadata[models.MetadataPage])
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	assert.GreaterOrEqual(t, hits[1].Score, hits[2].Score)
}

func TestQuery_ScopedByFilenameAndKind(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	require.NoError(t, s.UpsertPageVectors(ctx, "a.pdf", map[int]models.EmbeddingVector{1: vec(1, 0, 0)}))
	require.NoError(t, s.UpsertPageVectors(ctx, "b.pdf", map[int]models.EmbeddingVector{1: vec(1, 0, 0)}))
	require.NoError(t, s.UpsertFullTextVector(ctx, "a.pdf", vec(0, 0, 1)))

	hits, err := s.QueryDocumentPages(ctx, "a.pdf", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.pdf:page:1", hits[0].ID)

	full, err := s.QueryFullTextVector(ctx, "a.pdf", []float32{0, 0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, full, 1)
	assert.Equal(t, "a.pdf:full", full[0].ID)
	assert.Equal(t, models.VectorKindFull, full[0].Metadata[models.MetadataKind])
}

func TestQuery_TopKAboveCollectionSize(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	require.NoError(t, s.UpsertPageVectors(ctx, "a.pdf", map[int]models.EmbeddingVector{1: vec(1, 0, 0)}))

	hits, err := s.QueryDocumentPages(ctx, "a.pdf", []float32{1, 0, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestQuery_EmptyStore(t *testing.T) {
	s := newTestStore(t, 100)
	hits, err := s.QueryDocumentPages(context.Background(), "a.pdf", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpsertPageVectors_Batched(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	vectors := make(map[int]models.EmbeddingVector, 5)
	for page := 1; page <= 5; page++ {
		vectors[page] = vec(float32(page), 1, 0)
	}
	require.NoError(t, s.UpsertPageVectors(ctx, "big.pdf", vectors))
	assert.Equal(t, 5, s.Count())

	for page := 1; page <= 5; page++ {
		hits, err := s.QueryPageVector(ctx, "big.pdf", page, []float32{1, 1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, strconv.Itoa(page), hits[0].Metadata[models.MetadataPage])
	}
}

func TestDeleteDocumentVectors(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	require.NoError(t, s.UpsertPageVectors(ctx, "gone.pdf", map[int]models.EmbeddingVector{
		1: vec(1, 0, 0),
		2: vec(0, 1, 0),
	}))
	require.NoError(t, s.UpsertFullTextVector(ctx, "gone.pdf", vec(0, 0, 1)))
	require.NoError(t, s.UpsertPageVectors(ctx, "kept.pdf", map[int]models.EmbeddingVector{1: vec(1, 1, 0)}))

	require.NoError(t, s.DeleteDocumentVectors(ctx, "gone.pdf", 2))

	hits, err := s.QueryDocumentPages(ctx, "gone.pdf", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	full, err := s.QueryFullTextVector(ctx, "gone.pdf", []float32{0, 0, 1}, 1)
	require.NoError(t, err)
	assert.Empty(t, full)

	kept, err := s.QueryDocumentPages(ctx, "kept.pdf", []float32{1, 1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
