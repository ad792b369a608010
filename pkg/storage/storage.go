// Package storage resolves crawl output paths and writes page records.
//
// The directory layout is the contract consumed by the ingestion side:
// one compact JSON object per page at <root>/datasets/<host>/page_<n>.json.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avencia/sitedigest/internal/models"
)

// DefaultRoot is the storage root used when no override is configured.
const DefaultRoot = "storage"

// DatasetName derives the dataset directory name from a seed URL: one
// leading http:// or https:// prefix is stripped, and everything from the
// first slash on is dropped. The host keeps its port and case verbatim.
func DatasetName(seedURL string) string {
	name := strings.TrimPrefix(seedURL, "http://")
	if name == seedURL {
		name = strings.TrimPrefix(seedURL, "https://")
	}
	if i := strings.Index(name, "/"); i >= 0 {
		name = name[:i]
	}
	return name
}

// OutputPath returns the dataset directory for a seed URL under
// DefaultRoot. Pure: it never touches the filesystem.
func OutputPath(seedURL string) string {
	return OutputPathIn(DefaultRoot, seedURL)
}

// OutputPathIn is OutputPath with an explicit storage root.
func OutputPathIn(root, seedURL string) string {
	return filepath.Join(root, "datasets", DatasetName(seedURL))
}

// PageFileName returns the record filename for the nth visited page.
func PageFileName(index int) string {
	return fmt.Sprintf("page_%d.json", index)
}

// WritePage persists a page record as dir/page_<index>.json in compact
// JSON form. The write is immediate, not batched.
func WritePage(dir string, index int, page *models.Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page record: %w", err)
	}
	path := filepath.Join(dir, PageFileName(index))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write page record: %w", err)
	}
	return nil
}
