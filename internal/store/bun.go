package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"doc-tutor/internal/config"
	"doc-tutor/internal/errs"
	"doc-tutor/internal/models"
)

// Page-content kinds, one stored blob per kind per document.
const (
	kindTranscript = "transcript"
	kindMCQ        = "mcq"
)

type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID          string          `bun:"id,pk"`
	FullText    string          `bun:"full_text,notnull"`
	PageChunks  json.RawMessage `bun:"page_chunks,notnull,type:jsonb"`
	TotalPages  int             `bun:"total_pages,notnull"`
	TotalChunks int             `bun:"total_chunks,notnull"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull"`
}

type pageContentRow struct {
	bun.BaseModel `bun:"table:page_contents,alias:pc"`

	DocumentID string          `bun:"document_id,pk"`
	Kind       string          `bun:"kind,pk"`
	Payload    json.RawMessage `bun:"payload,notnull,type:jsonb"`
	UpdatedAt  time.Time       `bun:"updated_at,notnull"`
}

// BunStore is the Postgres-backed DocumentStore.
type BunStore struct {
	db *bun.DB
}

// ConnectDB opens the configured Postgres database. A URL carrying its own
// credentials goes through lib/pq; a separate password uses the bun driver.
func ConnectDB(dbConfig *config.DatabaseConfig) (*sql.DB, error) {
	if dbConfig.Password == "" {
		return sql.Open("postgres", dbConfig.URL)
	}
	return sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dbConfig.URL),
		pgdriver.WithPassword(dbConfig.Password),
	)), nil
}

// NewBunStore wraps an open connection.
func NewBunStore(sqldb *sql.DB, debug bool) *BunStore {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &BunStore{db: db}
}

// Init creates the tables if they do not exist.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*documentRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to create documents table")
	}
	if _, err := s.db.NewCreateTable().Model((*pageContentRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to create page_contents table")
	}
	return nil
}

// Close releases the underlying connection.
func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) StoreDocument(ctx context.Context, doc *models.ChunkedDocument) error {
	chunksJSON, err := json.Marshal(doc.PageChunks)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to encode page chunks")
	}

	row := &documentRow{
		ID:          doc.ID,
		FullText:    doc.FullText,
		PageChunks:  chunksJSON,
		TotalPages:  doc.TotalPages,
		TotalChunks: doc.TotalChunks,
		UpdatedAt:   time.Now().UTC(),
	}

	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("full_text = EXCLUDED.full_text").
		Set("page_chunks = EXCLUDED.page_chunks").
		Set("total_pages = EXCLUDED.total_pages").
		Set("total_chunks = EXCLUDED.total_chunks").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to store document")
	}
	return nil
}

func (s *BunStore) GetDocument(ctx context.Context, filename string) (*models.ChunkedDocument, error) {
	row := new(documentRow)
	err := s.db.NewSelect().Model(row).Where("d.id = ?", filename).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Newf(errs.KindNotFound, "document %q not found", filename)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err, "failed to load document")
	}

	pageChunks := make(map[int][]string)
	if err := json.Unmarshal(row.PageChunks, &pageChunks); err != nil {
		return nil, errs.Wrap(errs.KindStorage, err, "failed to decode page chunks")
	}

	return &models.ChunkedDocument{
		ID:          row.ID,
		FullText:    row.FullText,
		PageChunks:  pageChunks,
		TotalPages:  row.TotalPages,
		TotalChunks: row.TotalChunks,
	}, nil
}

func (s *BunStore) DeleteDocument(ctx context.Context, filename string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*pageContentRow)(nil)).Where("document_id = ?", filename).Exec(ctx); err != nil {
			return errs.Wrap(errs.KindStorage, err, "failed to delete page contents")
		}
		if _, err := tx.NewDelete().Model((*documentRow)(nil)).Where("id = ?", filename).Exec(ctx); err != nil {
			return errs.Wrap(errs.KindStorage, err, "failed to delete document")
		}
		return nil
	})
}

func (s *BunStore) StorePageResults(ctx context.Context, filename string, transcripts map[int]string, questions map[int][]models.MCQ) error {
	transcriptJSON, err := json.Marshal(transcripts)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to encode transcripts")
	}
	mcqJSON, err := json.Marshal(questions)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to encode questions")
	}

	now := time.Now().UTC()
	rows := []pageContentRow{
		{DocumentID: filename, Kind: kindTranscript, Payload: transcriptJSON, UpdatedAt: now},
		{DocumentID: filename, Kind: kindMCQ, Payload: mcqJSON, UpdatedAt: now},
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i := range rows {
			_, err := tx.NewInsert().
				Model(&rows[i]).
				On("CONFLICT (document_id, kind) DO UPDATE").
				Set("payload = EXCLUDED.payload").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.KindStorage, err, "failed to store page results")
	}
	return nil
}

func (s *BunStore) GetTranscripts(ctx context.Context, filename string) (map[int]string, error) {
	payload, err := s.pageContent(ctx, filename, kindTranscript)
	if err != nil {
		return nil, err
	}
	transcripts := make(map[int]string)
	if err := json.Unmarshal(payload, &transcripts); err != nil {
		return nil, errs.Wrap(errs.KindStorage, err, "failed to decode transcripts")
	}
	return transcripts, nil
}

func (s *BunStore) GetMCQs(ctx context.Context, filename string) (map[int][]models.MCQ, error) {
	payload, err := s.pageContent(ctx, filename, kindMCQ)
	if err != nil {
		return nil, err
	}
	questions := make(map[int][]models.MCQ)
	if err := json.Unmarshal(payload, &questions); err != nil {
		return nil, errs.Wrap(errs.KindStorage, err, "failed to decode questions")
	}
	return questions, nil
}

func (s *BunStore) pageContent(ctx context.Context, filename, kind string) (json.RawMessage, error) {
	row := new(pageContentRow)
	err := s.db.NewSelect().Model(row).
		Where("pc.document_id = ?", filename).
		Where("pc.kind = ?", kind).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Newf(errs.KindNotFound, "%s content for %q not found", kind, filename)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err, "failed to load page content")
	}
	return row.Payload, nil
}
