package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

var blankRunRe = regexp.MustCompile(`\n[ \t]*\n[ \t]*\n+`)

// Load reads a report file and splits it into pages, dispatching on the
// file extension. Unknown extensions are treated as plain text. Parsing
// never fails on odd content; the worst case is one page holding the
// whole document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	content := string(data)

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		doc = ParseMarkdown(content)
	case ".html", ".htm":
		doc, err = ParseHTML(content)
		if err != nil {
			doc = ParseText(content)
		}
	default:
		doc = ParseText(content)
	}
	doc.Path = path
	return doc, nil
}

// ParseText splits plain text into pages on form feeds. Text exported
// from PDF tools keeps \f page markers; when absent, runs of blank lines
// act as soft page breaks so the front-matter heuristics still see a
// meaningful "first page".
func ParseText(content string) *Document {
	var chunks []string
	if strings.Contains(content, "\f") {
		chunks = strings.Split(content, "\f")
	} else {
		chunks = blankRunRe.Split(content, -1)
	}

	pages := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) == "" {
			continue
		}
		pages = append(pages, c)
	}
	if len(pages) == 0 {
		pages = []string{content}
	}
	return newDocument(FormatText, pages)
}
