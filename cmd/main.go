package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"doc-tutor/internal/config"
	"doc-tutor/internal/embedding"
	"doc-tutor/internal/extract"
	"doc-tutor/internal/generate"
	"doc-tutor/internal/helper"
	"doc-tutor/internal/llmservice"
	"doc-tutor/internal/orchestrator"
	"doc-tutor/internal/rag"
	"doc-tutor/internal/store"
	"doc-tutor/internal/vectorstore"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", "", "Path to the config file (optional, built-in defaults apply)")
	filePath := flag.String("file", "", "Path to a document file to ingest and process")
	docName := flag.String("doc", "", "Stored document name for -query, -page and -delete")
	query := flag.String("query", "", "Question to answer against a stored document")
	page := flag.Int("page", 0, "Page number to print stored content for")
	deleteDoc := flag.Bool("delete", false, "Delete the stored document and its vectors")
	dryRun := flag.Bool("dry-run", false, "Extract and chunk only, do not embed or store")
	flag.Parse()

	app, err := newApp(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing")
	}
	defer app.close()

	ctx := context.Background()

	switch {
	case *filePath != "":
		app.processFile(ctx, *filePath, *dryRun)
	case *query != "" && *docName != "":
		app.answerQuery(ctx, *docName, *query)
	case *page > 0 && *docName != "":
		app.printPage(ctx, *docName, *page)
	case *deleteDoc && *docName != "":
		app.deleteDocument(ctx, *docName)
	default:
		log.Fatal().Msg("Provide -file, or -doc with one of -query/-page/-delete")
	}
}

type app struct {
	cfg       *config.Config
	docs      store.DocumentStore
	bunStore  *store.BunStore
	vectors   *vectorstore.Store
	embedder  *embedding.Embedder
	generator llmservice.Generator
	retriever *rag.Retriever
	runner    *orchestrator.Orchestrator
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		for _, vErr := range validationErrors {
			log.Error().Str("field", vErr.Field).Msg(vErr.Message)
		}
		return nil, fmt.Errorf("invalid configuration")
	}

	log.Debug().Interface("config", cfg).Msg("Loaded config")

	a := &app{cfg: cfg}

	if cfg.Database.URL != "" {
		sqldb, err := store.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		bunStore := store.NewBunStore(sqldb, cfg.Database.Debug)
		if err := bunStore.Init(context.Background()); err != nil {
			return nil, err
		}
		a.bunStore = bunStore
		a.docs = bunStore
	} else {
		log.Warn().Msg("No database configured, using in-memory document store")
		a.docs = store.NewMemoryStore()
	}

	if !cfg.VectorDB.InMemory {
		if err := helper.CreateFolder(cfg.VectorDB.Path); err != nil {
			return nil, err
		}
	}
	vectors, err := vectorstore.NewStore(&cfg.VectorDB, cfg.RAG.UpsertBatchSize)
	if err != nil {
		return nil, err
	}
	a.vectors = vectors

	backend, err := embedding.NewBackend(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}
	a.embedder = embedding.NewEmbedder(backend, &cfg.RAG)

	a.generator, err = llmservice.NewGenerator(&cfg.GenLLM)
	if err != nil {
		return nil, err
	}

	a.retriever = rag.NewRetriever(a.embedder, vectors, a.docs, &cfg.RAG)

	transcripts := generate.NewTranscriptGenerator(a.generator, a.retriever, cfg)
	questions := generate.NewMCQGenerator(a.generator, a.retriever, cfg)
	a.runner = orchestrator.New(cfg, a.embedder, vectors, a.docs, transcripts, questions)

	return a, nil
}

func (a *app) close() {
	if a.bunStore != nil {
		if err := a.bunStore.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing database")
		}
	}
}

func (a *app) processFile(ctx context.Context, filePath string, dryRun bool) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading document file")
	}
	filename := filepath.Base(filePath)

	if dryRun {
		extractor, err := extract.ForFilename(filename)
		if err != nil {
			log.Fatal().Err(err).Msg("Error selecting extractor")
		}
		pages, err := extractor.Extract(data)
		if err != nil {
			log.Fatal().Err(err).Msg("Error extracting pages")
		}
		for i, pageText := range pages {
			fmt.Printf("--- page %d (%d chars) ---\n%s\n", i+1, len(pageText), pageText)
		}
		return
	}

	if err := a.runner.Run(ctx, filename, data); err != nil {
		log.Fatal().Err(err).Msg("Error processing document")
	}
}

func (a *app) answerQuery(ctx context.Context, docName, query string) {
	data, err := a.retriever.AugmentForQuery(ctx, docName, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error retrieving context")
	}

	response, err := a.generator.Generate(ctx, []llmservice.Message{
		{Role: "system", Content: "You are a helpful assistant. Use the provided context to answer the query."},
		{Role: "user", Content: data.AugmentedPrompt},
	}, a.cfg.GenLLM.MaxTokens)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(data.Sources)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response)
}

func (a *app) printPage(ctx context.Context, docName string, page int) {
	transcripts, err := a.docs.GetTranscripts(ctx, docName)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading transcripts")
	}
	questions, err := a.docs.GetMCQs(ctx, docName)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading questions")
	}

	fmt.Printf("Transcript for page %d:\n%s\n\n", page, transcripts[page])
	fmt.Printf("Questions for page %d:\n", page)
	helper.PrettyPrint(questions[page])
}

func (a *app) deleteDocument(ctx context.Context, docName string) {
	if err := a.runner.Delete(ctx, docName); err != nil {
		log.Fatal().Err(err).Msg("Error deleting document")
	}
	log.Info().Str("filename", docName).Msg("Document deleted")
}
