// Package reporter summarizes a crawl output directory. It reads the
// same page_*.json records the ingestion pipeline globs for, so a report
// is also a cheap check that a dataset is readable.
package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/avencia/sitedigest/internal/models"
)

// Reporter generates dataset reports in various formats.
type Reporter struct{}

// New creates a new Reporter instance.
func New() *Reporter {
	return &Reporter{}
}

// Generate reads the page records under dir and renders a report in the
// given format ("json" or "markdown").
func (r *Reporter) Generate(dir, format string) (string, error) {
	report, err := r.load(dir)
	if err != nil {
		return "", fmt.Errorf("failed to load dataset: %w", err)
	}

	switch format {
	case "json":
		return r.generateJSON(report)
	case "markdown":
		return r.generateMarkdown(report)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// load globs dir for page records and builds the report, ordered by page
// index rather than lexically so page_10 follows page_9.
func (r *Reporter) load(dir string) (*models.DatasetReport, error) {
	files, err := filepath.Glob(filepath.Join(dir, "page_*.json"))
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return pageIndex(files[i]) < pageIndex(files[j])
	})

	report := &models.DatasetReport{Dir: dir}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var page models.Page
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("bad page record %s: %w", filepath.Base(file), err)
		}
		title := ""
		if page.Title != nil {
			title = *page.Title
		}
		report.Pages = append(report.Pages, models.PageSummary{
			File:     filepath.Base(file),
			URL:      page.URL,
			Title:    title,
			TextSize: len(page.Text),
		})
	}
	report.PageCount = len(report.Pages)
	return report, nil
}

func pageIndex(path string) int {
	name := filepath.Base(path)
	name = strings.TrimPrefix(name, "page_")
	name = strings.TrimSuffix(name, ".json")
	n, err := strconv.Atoi(name)
	if err != nil {
		return -1
	}
	return n
}

func (r *Reporter) generateJSON(report *models.DatasetReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

func (r *Reporter) generateMarkdown(report *models.DatasetReport) (string, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Crawl Dataset Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Directory", "`" + report.Dir + "`"},
			{"Pages", strconv.Itoa(report.PageCount)},
		},
	})
	md.PlainText("")

	md.H2("Pages")
	md.PlainText("")
	if len(report.Pages) == 0 {
		md.PlainText("No page records found.")
	} else {
		rows := make([][]string, len(report.Pages))
		for i, p := range report.Pages {
			title := p.Title
			if title == "" {
				title = "-"
			}
			rows[i] = []string{p.File, p.URL, title, strconv.Itoa(p.TextSize)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"File", "URL", "Title", "Text bytes"},
			Rows:   rows,
		})
	}

	if err := md.Build(); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
