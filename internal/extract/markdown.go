package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// MarkdownExtractor walks the goldmark AST collecting text content, starting
// a new page at every thematic break.
type MarkdownExtractor struct{}

func (MarkdownExtractor) Extract(data []byte) ([]string, error) {
	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(data))

	var pages []string
	var current strings.Builder

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.ThematicBreak:
			pages = append(pages, strings.TrimSpace(current.String()))
			current.Reset()
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			current.Write(node.Segment.Value(data))
			if node.HardLineBreak() || node.SoftLineBreak() {
				current.WriteString("\n")
			}
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if current.Len() > 0 {
				current.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	pages = append(pages, strings.TrimSpace(current.String()))
	return pages, nil
}
