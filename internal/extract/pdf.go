package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// PDFExtractor reads per-page plain text from PDF bytes.
type PDFExtractor struct{}

func (PDFExtractor) Extract(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			log.Warn().Err(err).Int("page", i).Msg("Failed to extract PDF page text")
			pageText = ""
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}
