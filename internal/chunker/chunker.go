// Package chunker splits page text into overlapping fixed-size windows and
// assembles the chunked form of a whole document.
package chunker

import (
	"strings"

	"doc-tutor/internal/errs"
	"doc-tutor/internal/models"
)

// Chunk slides a window of chunkSize characters over text, advancing by
// chunkSize-overlap each step. Text at or below chunkSize is returned as a
// single chunk. Windows are whitespace-trimmed and empty results are skipped.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, errs.Newf(errs.KindValidation, "chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		// The advance step would be non-positive and the loop would never end.
		return nil, errs.Newf(errs.KindValidation, "overlap %d must be in [0, %d)", overlap, chunkSize)
	}

	if len(text) <= chunkSize {
		return []string{text}, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// BuildDocument chunks every page and assembles the ChunkedDocument for the
// given filename. Pages are 1-based and contiguous.
func BuildDocument(filename string, pages []string, chunkSize, overlap int) (*models.ChunkedDocument, error) {
	pageChunks := make(map[int][]string, len(pages))
	totalChunks := 0
	for i, pageText := range pages {
		chunks, err := Chunk(pageText, chunkSize, overlap)
		if err != nil {
			return nil, err
		}
		pageChunks[i+1] = chunks
		totalChunks += len(chunks)
	}

	return &models.ChunkedDocument{
		ID:          filename,
		FullText:    strings.Join(pages, "\n"),
		PageChunks:  pageChunks,
		TotalPages:  len(pages),
		TotalChunks: totalChunks,
	}, nil
}
