package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// DocxExtractor yields the whole document as one page; DOCX carries no page
// boundaries in its content stream.
type DocxExtractor struct{}

func (DocxExtractor) Extract(data []byte) ([]string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return []string{extractXMLText(content, "<w:t", "</w:t>")}, nil
}

// XlsxExtractor maps each sheet to one page.
type XlsxExtractor struct{}

func (XlsxExtractor) Extract(data []byte) ([]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(f.Sheets))
	for _, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, text.String())
	}
	return pages, nil
}

// OdsExtractor maps each sheet to one page.
type OdsExtractor struct{}

func (OdsExtractor) Extract(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	pages := make([]string, 0, len(sheetNames))
	for _, sheetName := range sheetNames {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, text.String())
	}
	return pages, nil
}

// extractXMLText pulls the character data of every occurrence of the given
// element out of raw OOXML markup.
func extractXMLText(xmlContent, openTag, closeTag string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, openTag)
	for i, part := range parts {
		if i == 0 || part == "" {
			continue
		}
		// Only a real element match: the prefix is followed by '>' or an
		// attribute list, not by more tag-name characters (w:tab, w:tc, ...).
		if part[0] != '>' && part[0] != ' ' && part[0] != '\t' {
			continue
		}
		gt := strings.Index(part, ">")
		if gt < 0 {
			continue
		}
		rest := part[gt+1:]
		end := strings.Index(rest, closeTag)
		if end >= 0 {
			text.WriteString(rest[:end] + " ")
		}
	}
	return strings.TrimSpace(text.String())
}
