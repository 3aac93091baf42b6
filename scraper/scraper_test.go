package scraper_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Gaurav-Gosain/postlinks/extract"
	"github.com/Gaurav-Gosain/postlinks/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageOne = `<!DOCTYPE html>
<html><body>
<a class="u-baseColor--buttonNormal" href="/a?x=1">A</a>
<a class="u-baseColor--buttonNormal" href="/b">B</a>
<a class="u-baseColor--buttonNormal">no href</a>
<a class="u-baseColor--buttonNormal" href="/a?x=2">A again</a>
</body></html>`

const pageTwo = `<!DOCTYPE html>
<html><body>
<a class="u-baseColor--buttonNormal" href="/b?from=2">B</a>
<a class="u-baseColor--buttonNormal" href="/c">C</a>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/one", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, pageOne)
	})
	mux.HandleFunc("/two", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, pageTwo)
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"href": "/nope"}`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("extracts unique links from a single page", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs: []string{srv.URL + "/one"},
		})

		require.NoError(t, err)
		require.Len(t, session.Pages, 1)
		assert.Equal(t, http.StatusOK, session.Pages[0].Status)
		assert.NoError(t, session.Pages[0].Err)
		assert.Equal(t, []extract.Record{{PostURL: "/a"}, {PostURL: "/b"}}, session.Records())
	})

	t.Run("dedupes across start urls of one session", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs: []string{srv.URL + "/one", srv.URL + "/two"},
		})

		require.NoError(t, err)
		require.Len(t, session.Pages, 2)
		assert.Equal(t, []extract.Record{{PostURL: "/c"}}, session.Pages[1].Records)
		assert.Equal(t, []extract.Record{{PostURL: "/a"}, {PostURL: "/b"}, {PostURL: "/c"}}, session.Records())
		assert.Equal(t, 3, session.Seen.Len())
	})

	t.Run("uses caller supplied seen set", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		seen := extract.NewSeenSet()
		seen.Add("/a")

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs: []string{srv.URL + "/one"},
			Seen: seen,
		})

		require.NoError(t, err)
		assert.Same(t, seen, session.Seen)
		assert.Equal(t, []extract.Record{{PostURL: "/b"}}, session.Records())
	})

	t.Run("custom selector", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs:     []string{srv.URL + "/two"},
			Selector: "a[href='/c']",
		})

		require.NoError(t, err)
		assert.Equal(t, []extract.Record{{PostURL: "/c"}}, session.Records())
	})

	t.Run("failed page does not stop the session", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		var mu sync.Mutex
		var events []scraper.Event

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs: []string{srv.URL + "/missing", srv.URL + "/two"},
			OnEvent: func(e scraper.Event) {
				mu.Lock()
				defer mu.Unlock()
				events = append(events, e)
			},
		})

		require.NoError(t, err)
		require.Len(t, session.Pages, 2)

		assert.Error(t, session.Pages[0].Err)
		assert.Equal(t, http.StatusNotFound, session.Pages[0].Status)
		assert.Empty(t, session.Pages[0].Records)
		assert.Len(t, session.Failed(), 1)

		assert.Equal(t, []extract.Record{{PostURL: "/b"}, {PostURL: "/c"}}, session.Records())

		var types []string
		for _, e := range events {
			types = append(types, e.Type)
		}
		assert.Equal(t, []string{"fetching", "error", "fetching", "done"}, types)
		assert.Equal(t, []string{"/b", "/c"}, events[3].Posts)
	})

	t.Run("non html page yields no records", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs: []string{srv.URL + "/json"},
		})

		require.NoError(t, err)
		require.Len(t, session.Pages, 1)
		assert.NoError(t, session.Pages[0].Err)
		assert.Empty(t, session.Records())
	})

	t.Run("repeated start url is fetched once", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs: []string{srv.URL + "/one", srv.URL + "/one"},
		})

		require.NoError(t, err)
		assert.Len(t, session.Pages, 1)
	})

	t.Run("cancelled context marks pages failed", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		session, err := scraper.Run(ctx, scraper.Options{
			URLs: []string{srv.URL + "/one"},
		})

		require.NoError(t, err)
		require.Len(t, session.Pages, 1)
		assert.ErrorIs(t, session.Pages[0].Err, context.Canceled)
		assert.Empty(t, session.Records())
	})

	t.Run("no urls falls back to the default start url", func(t *testing.T) {
		t.Parallel()

		// Cancelled up front so nothing leaves the machine.
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		session, err := scraper.Run(ctx, scraper.Options{})

		require.NoError(t, err)
		require.Len(t, session.Pages, 1)
		assert.Equal(t, scraper.DefaultStartURL, session.Pages[0].URL)
	})

	t.Run("invalid url is reported", func(t *testing.T) {
		t.Parallel()

		session, err := scraper.Run(context.Background(), scraper.Options{
			URLs: []string{"://bad"},
		})

		require.NoError(t, err)
		require.Len(t, session.Pages, 1)
		assert.Error(t, session.Pages[0].Err)
	})
}
