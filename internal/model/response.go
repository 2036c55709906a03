package model

// ScrapeRequest is the inbound request body for a scrape.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeResponse is the flattened API response: the requested URL, the
// extraction record, the optional analysis fields, and any non-fatal warnings
// accumulated in pipeline stage order.
type ScrapeResponse struct {
	FetchedURL string `json:"fetched_url"`
	Extraction
	*Enrichment
	Warnings []string `json:"warnings"`
}
