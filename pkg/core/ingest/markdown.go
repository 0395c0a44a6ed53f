package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown converts a Markdown report to paged plain text using the
// Goldmark AST. Thematic breaks (---) and level-1 headings start a new
// page, matching how converted filings mark section boundaries. Table
// rows survive as pipe-separated lines, which is what the extraction
// patterns expect.
func ParseMarkdown(content string) *Document {
	source := []byte(content)
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	var pages []string
	var cur strings.Builder
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			pages = append(pages, cur.String())
		}
		cur.Reset()
	}

	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.ThematicBreak:
			flush()
			continue
		case *ast.Heading:
			if n.Level == 1 {
				flush()
			}
		}
		cur.WriteString(nodeText(child, source))
		cur.WriteString("\n")
	}
	flush()

	if len(pages) == 0 {
		pages = []string{content}
	}
	return newDocument(FormatMarkdown, pages)
}

// nodeText flattens a block node to plain text, preserving line breaks
// inside paragraphs and code blocks.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch node.(type) {
			case *ast.Paragraph, *ast.Heading, *ast.ListItem:
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
		case *ast.AutoLink:
			b.Write(t.URL(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
