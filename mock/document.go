// Package mock provides function-field fakes of the extract interfaces.
package mock

import "github.com/Gaurav-Gosain/postlinks/extract"

var _ extract.Document = (*Document)(nil)

// Document is a mock implementation of extract.Document.
type Document struct {
	FindFn func(selector string) []extract.Element
}

func (d *Document) Find(selector string) []extract.Element {
	return d.FindFn(selector)
}

var _ extract.Element = (*Element)(nil)

// Element is a mock implementation of extract.Element.
type Element struct {
	AttrFn func(name string) (string, bool)
}

func (e *Element) Attr(name string) (string, bool) {
	return e.AttrFn(name)
}
