// Package extract turns uploaded file bytes into per-page text. Formats
// without native pages map their natural unit (sheet, section) to a page.
package extract

import (
	"path/filepath"
	"strings"

	"doc-tutor/internal/errs"
)

// Extractor returns the page texts of a document, 1-based in slice order.
type Extractor interface {
	Extract(data []byte) ([]string, error)
}

// ForFilename picks the extractor for a file by extension.
func ForFilename(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return PDFExtractor{}, nil
	case ".docx":
		return DocxExtractor{}, nil
	case ".xlsx":
		return XlsxExtractor{}, nil
	case ".ods":
		return OdsExtractor{}, nil
	case ".md", ".markdown":
		return MarkdownExtractor{}, nil
	case ".txt":
		return TextExtractor{}, nil
	default:
		return nil, errs.Newf(errs.KindValidation, "unsupported file format: %s", ext)
	}
}

// TextExtractor treats form feeds as page breaks; without any, the whole
// file is one page.
type TextExtractor struct{}

func (TextExtractor) Extract(data []byte) ([]string, error) {
	text := string(data)
	if !strings.Contains(text, "\f") {
		return []string{text}, nil
	}
	pages := strings.Split(text, "\f")
	for i := range pages {
		pages[i] = strings.TrimSpace(pages[i])
	}
	return pages, nil
}
