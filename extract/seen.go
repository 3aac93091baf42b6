package extract

// SeenSet tracks normalized URLs already emitted during one scrape session.
// It is not safe for concurrent use.
type SeenSet struct {
	urls map[string]struct{}
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{urls: make(map[string]struct{})}
}

// Add records url and reports whether it was new.
func (s *SeenSet) Add(url string) bool {
	if s.urls == nil {
		s.urls = make(map[string]struct{})
	}
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// Has reports whether url was already added.
func (s *SeenSet) Has(url string) bool {
	_, ok := s.urls[url]
	return ok
}

// Len returns the number of distinct URLs added.
func (s *SeenSet) Len() int {
	return len(s.urls)
}
