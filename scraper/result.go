package scraper

import "github.com/Gaurav-Gosain/postlinks/extract"

// PageResult holds what one start URL produced.
type PageResult struct {
	URL     string
	Status  int
	Records []extract.Record
	Err     error
}

// Session is the outcome of one Run. Records are unique across all pages
// of the session.
type Session struct {
	Pages []PageResult
	Seen  *extract.SeenSet
}

// Records returns every record of the session, pages in start URL order.
func (s *Session) Records() []extract.Record {
	var out []extract.Record
	for _, p := range s.Pages {
		out = append(out, p.Records...)
	}
	return out
}

// Failed returns the pages that could not be fetched.
func (s *Session) Failed() []PageResult {
	var out []PageResult
	for _, p := range s.Pages {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}
