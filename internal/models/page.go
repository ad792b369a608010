package models

// Page is the persisted unit of crawl output. One page record is written
// per successfully fetched URL, immutable after creation. The JSON field
// names are the contract consumed by the ingestion side and must not
// change.
type Page struct {
	URL   string  `json:"url"`
	Title *string `json:"title"`
	Text  string  `json:"text"`
}

// Summary describes the outcome of a single crawl run. The crawl contract
// itself only returns the output directory; the summary exists for
// logging and reporting.
type Summary struct {
	OutputDir     string `json:"output_dir"`
	PagesWritten  int    `json:"pages_written"`
	FetchFailures int    `json:"fetch_failures"`
}

// DatasetReport summarizes the page records found in a crawl output
// directory.
type DatasetReport struct {
	Dir       string        `json:"dir"`
	PageCount int           `json:"page_count"`
	Pages     []PageSummary `json:"pages"`
}

// PageSummary is a single page record's entry in a DatasetReport.
type PageSummary struct {
	File     string `json:"file"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	TextSize int    `json:"text_size"`
}
