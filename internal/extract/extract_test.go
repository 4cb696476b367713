package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-tutor/internal/errs"
)

func TestForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     Extractor
	}{
		{"report.pdf", PDFExtractor{}},
		{"REPORT.PDF", PDFExtractor{}},
		{"letter.docx", DocxExtractor{}},
		{"sheet.xlsx", XlsxExtractor{}},
		{"sheet.ods", OdsExtractor{}},
		{"notes.md", MarkdownExtractor{}},
		{"notes.markdown", MarkdownExtractor{}},
		{"plain.txt", TextExtractor{}},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			extractor, err := ForFilename(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, extractor)
		})
	}
}

func TestForFilename_Unsupported(t *testing.T) {
	for _, filename := range []string{"archive.zip", "noextension", "image.png"} {
		_, err := ForFilename(filename)
		require.Error(t, err, filename)
		assert.True(t, errs.IsValidation(err))
	}
}

func TestTextExtractor(t *testing.T) {
	pages, err := TextExtractor{}.Extract([]byte("single page, no breaks"))
	require.NoError(t, err)
	assert.Equal(t, []string{"single page, no breaks"}, pages)

	pages, err = TextExtractor{}.Extract([]byte("page one\f page two \fpage three"))
	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two", "page three"}, pages)
}

func TestMarkdownExtractor_ThematicBreaksSplitPages(t *testing.T) {
	src := []byte(`# Intro

First page body.

---

Second page body with *emphasis*.

---

Third page body.
`)

	pages, err := MarkdownExtractor{}.Extract(src)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Contains(t, pages[0], "Intro")
	assert.Contains(t, pages[0], "First page body.")
	assert.Contains(t, pages[1], "Second page body with emphasis.")
	assert.Contains(t, pages[2], "Third page body.")
}

func TestMarkdownExtractor_NoBreaksIsOnePage(t *testing.T) {
	pages, err := MarkdownExtractor{}.Extract([]byte("Just one paragraph.\n\nAnd another."))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "Just one paragraph.")
	assert.Contains(t, pages[0], "And another.")
}

func TestExtractXMLText(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			"plain elements",
			`<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t>world</w:t></w:r></w:p>`,
			"Hello world",
		},
		{
			"element with attributes",
			`<w:t xml:space="preserve">kept text</w:t>`,
			"kept text",
		},
		{
			"ignores longer tag names",
			`<w:tbl><w:tc><w:t>cell</w:t></w:tc></w:tbl><w:tab/>`,
			"cell",
		},
		{
			"no matches",
			`<w:p><w:r></w:r></w:p>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractXMLText(tt.xml, "<w:t", "</w:t>"))
		})
	}
}
