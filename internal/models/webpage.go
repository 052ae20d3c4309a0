package models

// WebResult is a single search engine hit.
type WebResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Engine  string  `json:"engine"`
	Score   float64 `json:"score"`
}

// FetchedPage is the outcome of fetching and cleaning one web page.
// Success is false when the page could not be used (non-HTML content,
// empty body); Content then carries a short explanation.
type FetchedPage struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
	Success     bool   `json:"success"`
}
