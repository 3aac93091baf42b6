// Package extract pulls post links out of a parsed search results page.
package extract

import (
	"iter"
	"strings"
)

const (
	// DefaultSelector matches the post title buttons on a Medium search page.
	DefaultSelector = ".u-baseColor--buttonNormal"
	// DefaultAttr holds the link target.
	DefaultAttr = "href"
)

// Record is a single extracted post link.
type Record struct {
	PostURL string `json:"post_url" yaml:"post_url"`
}

// Element is a single matched node of a parsed page.
type Element interface {
	// Attr returns the named attribute and whether it is present.
	Attr(name string) (string, bool)
}

// Document is a parsed page that can be queried with CSS selectors.
type Document interface {
	// Find returns the elements matching selector in document order.
	Find(selector string) []Element
}

// Extractor selects elements by CSS selector and emits their normalized
// link targets.
type Extractor struct {
	Selector string
	Attr     string
}

// New returns an Extractor using the default selector and attribute.
func New() *Extractor {
	return &Extractor{
		Selector: DefaultSelector,
		Attr:     DefaultAttr,
	}
}

// Normalize drops the query string, if any.
func Normalize(raw string) string {
	before, _, _ := strings.Cut(raw, "?")
	return before
}

// Process yields a Record for every matching element whose normalized link
// has not been seen yet. Each yielded URL is added to seen before it is
// emitted. Elements without the attribute are skipped.
//
// The sequence is lazy: elements after an early break are left untouched.
func (x *Extractor) Process(doc Document, seen *SeenSet) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, el := range doc.Find(x.selector()) {
			raw, ok := el.Attr(x.attr())
			if !ok || raw == "" {
				continue
			}

			postURL := Normalize(raw)
			if !seen.Add(postURL) {
				continue
			}

			if !yield(Record{PostURL: postURL}) {
				return
			}
		}
	}
}

// Collect drains Process into a slice.
func (x *Extractor) Collect(doc Document, seen *SeenSet) []Record {
	var records []Record
	for r := range x.Process(doc, seen) {
		records = append(records, r)
	}
	return records
}

func (x *Extractor) selector() string {
	if x.Selector == "" {
		return DefaultSelector
	}
	return x.Selector
}

func (x *Extractor) attr() string {
	if x.Attr == "" {
		return DefaultAttr
	}
	return x.Attr
}
