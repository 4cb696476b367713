package orchestrator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-tutor/internal/config"
	"doc-tutor/internal/embedding"
	"doc-tutor/internal/errs"
	"doc-tutor/internal/generate"
	"doc-tutor/internal/llmservice"
	"doc-tutor/internal/models"
	"doc-tutor/internal/orchestrator"
	"doc-tutor/internal/store"
	"doc-tutor/internal/vectorstore"
)

// hashBackend returns a deterministic vector per text so distinct pages get
// distinct embeddings without a model. Texts containing failOn fail fatally.
type hashBackend struct {
	failOn string
}

func (b *hashBackend) Embed(_ context.Context, text string) (any, error) {
	if b.failOn != "" && strings.Contains(text, b.failOn) {
		return nil, errs.Newf(errs.KindEmbedding, "status code: 401 unauthorized")
	}
	var sum float32
	for _, c := range text {
		sum += float32(c)
	}
	return []float32{sum, float32(len(text)), 1}, nil
}

type scriptedGenerator struct {
	response string
	err      error
}

func (g *scriptedGenerator) Generate(context.Context, []llmservice.Message, int) (string, error) {
	return g.response, g.err
}

func testConfig() *config.Config {
	cfg, err := config.LoadConfig("")
	if err != nil {
		panic(err)
	}
	cfg.RAG.ChunkSize = 60
	cfg.RAG.ChunkOverlap = 10
	cfg.RAG.MinTextLength = 10
	cfg.RAG.RetryDelay = time.Millisecond
	cfg.RAG.EmbedRatePerSecond = 10000
	return cfg
}

type fixture struct {
	runner  *orchestrator.Orchestrator
	docs    *store.MemoryStore
	vectors *vectorstore.Store
}

func newFixture(t *testing.T, cfg *config.Config, backend embedding.Backend, generator llmservice.Generator) *fixture {
	t.Helper()

	vectors, err := vectorstore.NewStore(&config.VectorDBConfig{
		Collection: "orchestrator_test",
		InMemory:   true,
	}, cfg.RAG.UpsertBatchSize)
	require.NoError(t, err)

	docs := store.NewMemoryStore()
	embedder := embedding.NewEmbedder(backend, &cfg.RAG)
	transcripts := generate.NewTranscriptGenerator(generator, nil, cfg)
	questions := generate.NewMCQGenerator(generator, nil, cfg)

	return &fixture{
		runner:  orchestrator.New(cfg, embedder, vectors, docs, transcripts, questions),
		docs:    docs,
		vectors: vectors,
	}
}

func samplePages() []string {
	return []string{
		"The water cycle begins with evaporation from oceans and lakes under solar heat.",
		"Water vapor cools at altitude and condenses into clouds of tiny droplets.",
		"Precipitation returns water to the surface where runoff feeds rivers and seas.",
	}
}

func TestRunPages_EndToEnd(t *testing.T) {
	cfg := testConfig()
	generator := &scriptedGenerator{
		response: `A model answer. [{"question": "What drives evaporation?", "options": ["Heat", "Wind", "Gravity", "Pressure"], "correct_option_index": 0, "explanation": "Solar heat."}]`,
	}
	f := newFixture(t, cfg, &hashBackend{}, generator)
	ctx := context.Background()

	require.NoError(t, f.runner.RunPages(ctx, "cycle.pdf", samplePages()))

	doc, err := f.docs.GetDocument(ctx, "cycle.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.TotalPages)

	transcripts, err := f.docs.GetTranscripts(ctx, "cycle.pdf")
	require.NoError(t, err)
	require.Len(t, transcripts, 3)
	for page := 1; page <= 3; page++ {
		assert.NotEmpty(t, transcripts[page], "transcript for page %d", page)
	}

	questions, err := f.docs.GetMCQs(ctx, "cycle.pdf")
	require.NoError(t, err)
	require.Len(t, questions, 3)
	for page := 1; page <= 3; page++ {
		require.NotEmpty(t, questions[page], "questions for page %d", page)
		for _, q := range questions[page] {
			assert.Len(t, q.Options, models.OptionsPerQuestion)
			assert.GreaterOrEqual(t, q.CorrectOptionIndex, 0)
			assert.Less(t, q.CorrectOptionIndex, models.OptionsPerQuestion)
			assert.Equal(t, page, q.PageNumber)
		}
	}

	// One vector per page plus the full-text vector.
	assert.Equal(t, 4, f.vectors.Count())
}

func TestRunPages_EmbeddingFailureStillGeneratesContent(t *testing.T) {
	cfg := testConfig()
	generator := &scriptedGenerator{err: errs.New(errs.KindParse, "model offline")}
	f := newFixture(t, cfg, &hashBackend{failOn: "condenses"}, generator)
	ctx := context.Background()

	require.NoError(t, f.runner.RunPages(ctx, "cycle.pdf", samplePages()))

	transcripts, err := f.docs.GetTranscripts(ctx, "cycle.pdf")
	require.NoError(t, err)
	assert.Len(t, transcripts, 3, "page with failed embedding still gets a transcript")

	questions, err := f.docs.GetMCQs(ctx, "cycle.pdf")
	require.NoError(t, err)
	for page := 1; page <= 3; page++ {
		assert.Equal(t, generate.FallbackMCQs(page), questions[page])
	}

	hits, err := f.vectors.QueryDocumentPages(ctx, "cycle.pdf", []float32{1, 1, 1}, 3)
	require.NoError(t, err)
	assert.Len(t, hits, 2, "failed page has no vector")
}

func TestRunPages_InvalidChunkConfigFails(t *testing.T) {
	cfg := testConfig()
	cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize
	f := newFixture(t, cfg, &hashBackend{}, &scriptedGenerator{response: "ok"})

	err := f.runner.RunPages(context.Background(), "cycle.pdf", samplePages())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestDelete_RemovesDocumentAndVectors(t *testing.T) {
	cfg := testConfig()
	generator := &scriptedGenerator{response: `[{"question": "Q?", "options": ["a","b","c","d"]}]`}
	f := newFixture(t, cfg, &hashBackend{}, generator)
	ctx := context.Background()

	require.NoError(t, f.runner.RunPages(ctx, "cycle.pdf", samplePages()))
	require.NoError(t, f.runner.Delete(ctx, "cycle.pdf"))

	_, err := f.docs.GetDocument(ctx, "cycle.pdf")
	assert.True(t, errs.IsNotFound(err))

	hits, err := f.vectors.QueryDocumentPages(ctx, "cycle.pdf", []float32{1, 1, 1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 0, f.vectors.Count())
}

func TestDelete_UnknownDocument(t *testing.T) {
	f := newFixture(t, testConfig(), &hashBackend{}, &scriptedGenerator{response: "ok"})

	err := f.runner.Delete(context.Background(), "missing.pdf")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestRunPages_ReprocessOverwrites(t *testing.T) {
	cfg := testConfig()
	f := newFixture(t, cfg, &hashBackend{}, &scriptedGenerator{response: "First pass summary."})
	ctx := context.Background()

	require.NoError(t, f.runner.RunPages(ctx, "cycle.pdf", samplePages()))
	first := f.vectors.Count()

	require.NoError(t, f.runner.RunPages(ctx, "cycle.pdf", samplePages()))
	assert.Equal(t, first, f.vectors.Count(), "reprocessing must not duplicate vectors")

	transcripts, err := f.docs.GetTranscripts(ctx, "cycle.pdf")
	require.NoError(t, err)
	assert.Len(t, transcripts, 3)
}
