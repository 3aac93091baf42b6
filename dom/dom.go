// Package dom adapts goquery selections to the extract.Document interface.
package dom

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"github.com/Gaurav-Gosain/postlinks/extract"
)

// Document wraps a goquery selection, usually a whole parsed page.
type Document struct {
	sel *goquery.Selection
}

// FromSelection wraps an existing selection, such as colly's HTMLElement.DOM.
func FromSelection(sel *goquery.Selection) *Document {
	return &Document{sel: sel}
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return FromSelection(doc.Selection), nil
}

// Find returns the matching elements in document order. A selector that
// fails to compile matches nothing.
func (d *Document) Find(selector string) []extract.Element {
	if d == nil || d.sel == nil {
		return nil
	}

	matches := d.sel.Find(selector)
	elements := make([]extract.Element, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, Element{sel: s})
	})
	return elements
}

// Element is a single matched node.
type Element struct {
	sel *goquery.Selection
}

// Attr returns the named attribute and whether the node carries it.
func (e Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}
