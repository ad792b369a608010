package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher retrieves the raw bytes behind a URL. Implementations isolate
// network failures from crawl logic: an error means the URL could not be
// fetched and says nothing about the rest of the crawl.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher performs a single plain GET per URL. It deliberately does
// not validate the response status: a 404 or 500 body is still content,
// matching the permissive contract the record consumers expect. No
// timeout is layered on top of the client's defaults and connections are
// not pooled across fetches.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher backed by a non-pooling HTTP client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	}
}

// Fetch GETs the URL and returns the response body for any status code.
// Network-level errors are wrapped with the triggering URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}
