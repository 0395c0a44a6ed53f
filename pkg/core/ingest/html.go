package ingest

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageBreak marks page boundaries while linearizing HTML. Reusing the
// form feed lets the text splitter do the final paging.
const pageBreak = "\f"

// ParseHTML linearizes an HTML report into paged text. Scripts, styles
// and SVG are dropped; <hr> and <h1> act as page breaks; table rows come
// out as pipe-separated lines so numeric patterns can match them.
func ParseHTML(content string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, svg, iframe").Remove()
	doc.Find("hr").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithHtml("<p>" + pageBreak + "</p>")
	})
	doc.Find("h1").Each(func(_ int, sel *goquery.Selection) {
		sel.BeforeHtml("<p>" + pageBreak + "</p>")
	})

	var lines []string
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, tr, caption, div").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "tr":
			var cells []string
			sel.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			lines = append(lines, strings.Join(cells, " | "))
		case "div":
			// Only leaf divs carry their own text; containers repeat
			// what their children already contribute.
			if sel.ChildrenFiltered("p, div, table, ul, ol, h1, h2, h3, h4, h5, h6").Length() > 0 {
				return
			}
			lines = append(lines, strings.TrimSpace(sel.Text()))
		case "li":
			if sel.ChildrenFiltered("p").Length() > 0 {
				return
			}
			lines = append(lines, strings.TrimSpace(sel.Text()))
		default:
			lines = append(lines, strings.TrimSpace(sel.Text()))
		}
	})

	flat := strings.Join(lines, "\n")
	if strings.TrimSpace(strings.ReplaceAll(flat, pageBreak, "")) == "" {
		flat = doc.Text()
	}

	var pages []string
	for _, chunk := range strings.Split(flat, pageBreak) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		pages = append(pages, chunk)
	}
	if len(pages) == 0 {
		pages = []string{flat}
	}
	return newDocument(FormatHTML, pages), nil
}
