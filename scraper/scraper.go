package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/Gaurav-Gosain/postlinks/dom"
	"github.com/Gaurav-Gosain/postlinks/extract"
)

// DefaultStartURL is scraped when no URLs are given.
const DefaultStartURL = "https://towardsdatascience.com/search?q=github%20actions"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 15 * time.Second

// Event is emitted during scraping for progress tracking.
type Event struct {
	Type  string // "fetching", "done", "error"
	URL   string
	Posts []string // new post URLs, only for "done" events
	Err   error    // only for "error" events
}

// Options configures a scrape session.
type Options struct {
	URLs      []string
	Selector  string
	Attr      string
	UserAgent string
	Timeout   time.Duration
	// Seen scopes deduplication. A fresh set is created when nil.
	Seen    *extract.SeenSet
	OnEvent func(Event) // optional progress callback
}

func (o *Options) emit(e Event) {
	if o.OnEvent != nil {
		o.OnEvent(e)
	}
}

func (o *Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Run fetches every start URL once, in order, and extracts post links from
// each HTML page. A failed page is recorded on its PageResult and does not
// stop the session.
func Run(ctx context.Context, opts Options) (*Session, error) {
	urls := opts.URLs
	if len(urls) == 0 {
		urls = []string{DefaultStartURL}
	}

	seen := opts.Seen
	if seen == nil {
		seen = extract.NewSeenSet()
	}
	x := &extract.Extractor{Selector: opts.Selector, Attr: opts.Attr}

	// Depth 1: start URLs only, never follow links.
	collectorOpts := []colly.CollectorOption{
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	}
	if opts.UserAgent != "" {
		collectorOpts = append(collectorOpts, colly.UserAgent(opts.UserAgent))
	}

	c := colly.NewCollector(collectorOpts...)
	c.SetRequestTimeout(opts.timeout())

	session := &Session{Seen: seen}

	// The collector is synchronous, so callbacks for a Visit all run before
	// it returns and always belong to the current page.
	var page *PageResult

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		opts.emit(Event{Type: "fetching", URL: r.URL.String()})
	})

	c.OnResponse(func(r *colly.Response) {
		page.Status = r.StatusCode
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		for rec := range x.Process(dom.FromSelection(e.DOM), seen) {
			page.Records = append(page.Records, rec)
		}
	})

	c.OnScraped(func(r *colly.Response) {
		posts := make([]string, len(page.Records))
		for i, rec := range page.Records {
			posts[i] = rec.PostURL
		}
		opts.emit(Event{Type: "done", URL: r.Request.URL.String(), Posts: posts})
	})

	c.OnError(func(r *colly.Response, err error) {
		page.Status = r.StatusCode
		page.Err = fmt.Errorf("request failed (status %d): %w", r.StatusCode, err)
		opts.emit(Event{Type: "error", URL: r.Request.URL.String(), Err: err})
	})

	for _, u := range urls {
		page = &PageResult{URL: u}

		err := c.Visit(u)
		var visited *colly.AlreadyVisitedError
		switch {
		case errors.As(err, &visited):
			// Repeated start URL.
			continue
		case err != nil && page.Err == nil:
			page.Err = err
			opts.emit(Event{Type: "error", URL: u, Err: err})
		case page.Err == nil && ctx.Err() != nil && page.Status == 0:
			page.Err = ctx.Err()
		}

		session.Pages = append(session.Pages, *page)
	}

	return session, nil
}
