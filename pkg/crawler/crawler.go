// Package crawler implements a same-origin breadth-first web crawler.
//
// Starting from a seed URL it fetches pages one at a time, extracts their
// visible text and outgoing links, persists one JSON record per page and
// stops when the frontier is exhausted or the page budget is reached.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/avencia/sitedigest/internal/models"
	"github.com/avencia/sitedigest/pkg/extractor"
	"github.com/avencia/sitedigest/pkg/links"
	"github.com/avencia/sitedigest/pkg/storage"
)

// DefaultMaxPages is the page budget used by the CLI when none is given.
const DefaultMaxPages = 50

// Options configures a Crawler. The zero value crawls nothing (a zero
// page budget is a legal empty run); callers wanting the conventional
// budget pass DefaultMaxPages explicitly.
type Options struct {
	MaxPages    int         // page budget, >= 0
	StorageRoot string      // defaults to storage.DefaultRoot
	Fetcher     Fetcher     // defaults to NewHTTPFetcher()
	Logger      *zap.Logger // defaults to zap.NewNop()
}

// Crawler owns the frontier queue and visited set of a single crawl run.
// It is not safe for concurrent use; one Crawler drives one run.
type Crawler struct {
	seedURL     string
	origin      *url.URL
	maxPages    int
	storageRoot string
	fetcher     Fetcher
	logger      *zap.Logger
	summary     models.Summary
}

// New validates the seed URL and builds a crawler. A seed without an
// http or https scheme or without a host is rejected here rather than
// producing a nonsensical dataset directory later.
func New(seedURL string, opts Options) (*Crawler, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("seed URL %q must use http or https", seedURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("seed URL %q has no host", seedURL)
	}
	if opts.MaxPages < 0 {
		return nil, fmt.Errorf("max pages must be >= 0, got %d", opts.MaxPages)
	}

	if opts.StorageRoot == "" {
		opts.StorageRoot = storage.DefaultRoot
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewHTTPFetcher()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Crawler{
		seedURL:     seedURL,
		origin:      u,
		maxPages:    opts.MaxPages,
		storageRoot: opts.StorageRoot,
		fetcher:     opts.Fetcher,
		logger:      opts.Logger,
	}, nil
}

// Crawl runs the breadth-first loop and returns the output directory.
//
// The frontier is FIFO and duplicates are filtered lazily at pop time
// against the visited set, so a URL may sit in the frontier more than
// once before its first visit. Fetch failures are logged and skipped
// without marking the URL visited; a failed URL rediscovered through
// another link gets fetched again. Filesystem write failures abort the
// run. The context applies to each fetch.
func (c *Crawler) Crawl(ctx context.Context) (string, error) {
	outputDir := storage.OutputPathIn(c.storageRoot, c.seedURL)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	frontier := []string{c.seedURL}
	visited := make(map[string]bool)
	failures := 0

	for len(frontier) > 0 && len(visited) < c.maxPages {
		current := frontier[0]
		frontier = frontier[1:]
		if visited[current] {
			continue
		}

		body, err := c.fetcher.Fetch(ctx, current)
		if err != nil {
			c.logger.Warn("failed to fetch", zap.String("url", current), zap.Error(err))
			failures++
			continue
		}

		doc, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			c.logger.Warn("failed to parse", zap.String("url", current), zap.Error(err))
			failures++
			continue
		}

		page := &models.Page{
			URL:   current,
			Title: extractor.Title(doc),
			Text:  extractor.VisibleText(doc),
		}
		if err := storage.WritePage(outputDir, len(visited), page); err != nil {
			return "", err
		}
		visited[current] = true
		c.logger.Debug("crawled page",
			zap.String("url", current),
			zap.Int("pages", len(visited)),
			zap.Int("frontier", len(frontier)))

		base, err := url.Parse(current)
		if err != nil {
			continue
		}
		for _, link := range links.Discover(doc, base, c.origin) {
			if !visited[link] {
				frontier = append(frontier, link)
			}
		}
	}

	c.summary = models.Summary{
		OutputDir:     outputDir,
		PagesWritten:  len(visited),
		FetchFailures: failures,
	}
	c.logger.Info("crawl complete",
		zap.String("output_dir", outputDir),
		zap.Int("pages_written", len(visited)),
		zap.Int("fetch_failures", failures))

	return outputDir, nil
}

// Summary reports the outcome of the most recent Crawl call.
func (c *Crawler) Summary() models.Summary {
	return c.summary
}
