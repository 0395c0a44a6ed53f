// Package ingest turns report files (plain text, Markdown, HTML) into an
// ordered set of pages that the extraction layer scans. Page boundaries
// matter downstream: identity detection reads the first pages only, and
// sentiment scoring is capped to the front of the document.
package ingest

import "strings"

// Document is a report split into 1-indexed pages.
type Document struct {
	Path   string
	Format string
	Order  []int
	Pages  map[int]string
}

func newDocument(format string, pages []string) *Document {
	doc := &Document{
		Format: format,
		Pages:  make(map[int]string, len(pages)),
	}
	for i, p := range pages {
		num := i + 1
		doc.Order = append(doc.Order, num)
		doc.Pages[num] = p
	}
	return doc
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return len(d.Order)
}

// Page returns the text of page n, or "" when out of range.
func (d *Document) Page(n int) string {
	return d.Pages[n]
}

// FullText joins all pages in order.
func (d *Document) FullText() string {
	parts := make([]string, 0, len(d.Order))
	for _, n := range d.Order {
		parts = append(parts, d.Pages[n])
	}
	return strings.Join(parts, "\n")
}

// FirstPages joins up to n leading pages. Identity and sentiment scans
// only need the front of the filing.
func (d *Document) FirstPages(n int) string {
	if n > len(d.Order) {
		n = len(d.Order)
	}
	parts := make([]string, 0, n)
	for _, num := range d.Order[:n] {
		parts = append(parts, d.Pages[num])
	}
	return strings.Join(parts, "\n")
}
