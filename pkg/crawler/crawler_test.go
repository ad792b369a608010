package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avencia/sitedigest/internal/models"
	"github.com/avencia/sitedigest/pkg/storage"
)

// fakeFetcher serves canned pages and records fetch order. URLs listed in
// failOnce fail their first fetch and succeed afterwards.
type fakeFetcher struct {
	pages    map[string]string
	failOnce map[string]bool
	calls    []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if f.failOnce[url] {
		delete(f.failOnce, url)
		return nil, errors.New("connection refused")
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no route for %s", url)
	}
	return []byte(body), nil
}

func pageWithLinks(title string, hrefs ...string) string {
	body := ""
	for _, href := range hrefs {
		body += fmt.Sprintf(`<a href="%s">link</a>`, href)
	}
	return fmt.Sprintf(`<html><head><title>%s</title></head><body>%s</body></html>`, title, body)
}

func readRecords(t *testing.T, dir string) []models.Page {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "page_*.json"))
	require.NoError(t, err)
	records := make([]models.Page, 0, len(files))
	for i := range files {
		data, err := os.ReadFile(filepath.Join(dir, storage.PageFileName(i)))
		require.NoError(t, err)
		var page models.Page
		require.NoError(t, json.Unmarshal(data, &page))
		records = append(records, page)
	}
	return records
}

func TestNewRejectsBadSeeds(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"no scheme", "example.com/a"},
		{"unsupported scheme", "ftp://example.com"},
		{"no host", "https:///path"},
		{"garbage", "://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.url, Options{MaxPages: 5})
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestNewRejectsNegativeBudget(t *testing.T) {
	c, err := New("https://example.com", Options{MaxPages: -1})
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestCrawlBreadthFirstOrder(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://a.com/":  pageWithLinks("A", "/b", "/c"),
		"https://a.com/b": pageWithLinks("B", "/d"),
		"https://a.com/c": pageWithLinks("C"),
		"https://a.com/d": pageWithLinks("D"),
	}}

	c, err := New("https://a.com/", Options{MaxPages: 10, StorageRoot: t.TempDir(), Fetcher: f})
	require.NoError(t, err)
	_, err = c.Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://a.com/",
		"https://a.com/b",
		"https://a.com/c",
		"https://a.com/d",
	}, f.calls)
}

func TestCrawlSinglePageBudget(t *testing.T) {
	hrefs := make([]string, 10)
	for i := range hrefs {
		hrefs[i] = fmt.Sprintf("/page%d", i)
	}
	f := &fakeFetcher{pages: map[string]string{
		"https://example.com": pageWithLinks("Home", hrefs...),
	}}

	root := t.TempDir()
	c, err := New("https://example.com", Options{MaxPages: 1, StorageRoot: root, Fetcher: f})
	require.NoError(t, err)

	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, storage.OutputPathIn(root, "https://example.com"), dir)

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "page_0.json", filepath.Base(files[0]))
	assert.Equal(t, []string{"https://example.com"}, f.calls)
}

func TestCrawlZeroBudget(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{}}
	root := t.TempDir()

	c, err := New("https://example.com", Options{MaxPages: 0, StorageRoot: root, Fetcher: f})
	require.NoError(t, err)

	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)

	// The output directory exists but nothing was fetched or written.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.calls)
}

func TestCrawlFetchFailureDoesNotAbort(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{
			"https://a.com/":      pageWithLinks("Home", "/flaky", "/ok"),
			"https://a.com/ok":    pageWithLinks("OK", "/flaky"),
			"https://a.com/flaky": pageWithLinks("Flaky"),
		},
		failOnce: map[string]bool{"https://a.com/flaky": true},
	}

	c, err := New("https://a.com/", Options{MaxPages: 5, StorageRoot: t.TempDir(), Fetcher: f})
	require.NoError(t, err)

	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)

	// The failed URL was not marked visited, so its rediscovery through
	// /ok produced a second, successful fetch.
	assert.Equal(t, []string{
		"https://a.com/",
		"https://a.com/flaky",
		"https://a.com/ok",
		"https://a.com/flaky",
	}, f.calls)

	records := readRecords(t, dir)
	require.Len(t, records, 3)

	summary := c.Summary()
	assert.Equal(t, 3, summary.PagesWritten)
	assert.Equal(t, 1, summary.FetchFailures)
}

func TestCrawlLazyDuplicateFiltering(t *testing.T) {
	// /x and /y both link to /z: the second discovery happens before /z
	// is visited, so /z sits in the frontier twice and the duplicate is
	// dropped at pop time.
	f := &fakeFetcher{pages: map[string]string{
		"https://a.com/":  pageWithLinks("Home", "/x", "/y"),
		"https://a.com/x": pageWithLinks("X", "/z"),
		"https://a.com/y": pageWithLinks("Y", "/z"),
		"https://a.com/z": pageWithLinks("Z"),
	}}

	c, err := New("https://a.com/", Options{MaxPages: 10, StorageRoot: t.TempDir(), Fetcher: f})
	require.NoError(t, err)

	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.calls, 4)
	records := readRecords(t, dir)
	require.Len(t, records, 4)
	for i := range records {
		_, err := os.Stat(filepath.Join(dir, storage.PageFileName(i)))
		assert.NoError(t, err, "filenames must be gap-free")
	}
}

func TestCrawlRecordContents(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://a.com/": `<html><head><title>Home</title></head><body><p>Hello</p></body></html>`,
	}}

	c, err := New("https://a.com/", Options{MaxPages: 1, StorageRoot: t.TempDir(), Fetcher: f})
	require.NoError(t, err)
	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "page_0.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://a.com/","title":"Home","text":"Hello"}`, string(data))
}

func TestCrawlStaysOnOrigin(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://a.com/":            pageWithLinks("Home", "/in", "https://b.com/out", "http://a.com/wrong-scheme"),
		"https://a.com/in":          pageWithLinks("In"),
		"https://b.com/out":         pageWithLinks("Out"),
		"http://a.com/wrong-scheme": pageWithLinks("Wrong"),
	}}

	c, err := New("https://a.com/", Options{MaxPages: 10, StorageRoot: t.TempDir(), Fetcher: f})
	require.NoError(t, err)
	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.com/", "https://a.com/in"}, f.calls)
	for _, record := range readRecords(t, dir) {
		assert.Contains(t, record.URL, "https://a.com/")
	}
}

func TestCrawlBudgetBound(t *testing.T) {
	// A fully connected little site: visited never exceeds the budget.
	f := &fakeFetcher{pages: map[string]string{
		"https://a.com/":  pageWithLinks("Home", "/1", "/2", "/3", "/4", "/5"),
		"https://a.com/1": pageWithLinks("1", "/2", "/3"),
		"https://a.com/2": pageWithLinks("2", "/3", "/4"),
		"https://a.com/3": pageWithLinks("3", "/4", "/5"),
		"https://a.com/4": pageWithLinks("4", "/5", "/1"),
		"https://a.com/5": pageWithLinks("5", "/1", "/2"),
	}}

	c, err := New("https://a.com/", Options{MaxPages: 3, StorageRoot: t.TempDir(), Fetcher: f})
	require.NoError(t, err)
	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)

	records := readRecords(t, dir)
	assert.Len(t, records, 3)
}

func TestCrawlAgainstHTTPServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, pageWithLinks("Home", "/missing"))
		default:
			// The fetcher is status blind: this 404 body still
			// becomes a page record.
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `<html><head><title>Not Found</title></head><body>gone</body></html>`)
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL, Options{MaxPages: 10, StorageRoot: t.TempDir()})
	require.NoError(t, err)

	dir, err := c.Crawl(context.Background())
	require.NoError(t, err)

	records := readRecords(t, dir)
	require.Len(t, records, 2)
	require.NotNil(t, records[1].Title)
	assert.Equal(t, "Not Found", *records[1].Title)

	summary := c.Summary()
	assert.Equal(t, 2, summary.PagesWritten)
	assert.Equal(t, 0, summary.FetchFailures)
}
