// Package websearch provides the SearXNG client used by the web and deep
// web retrieval backends.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/httpclient"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

const userAgent = "WebRAgent/1.0"

// maxResultsPerRequest caps a single search request to keep responses small.
const maxResultsPerRequest = 25

// SearXNGClient queries a SearXNG instance through its JSON API.
type SearXNGClient struct {
	baseURL        string
	resultsPerPage int
	client         *http.Client
	logger         arbor.ILogger
}

// NewSearXNGClient creates a client for the configured SearXNG instance.
func NewSearXNGClient(cfg *common.SearXNGConfig, logger arbor.ILogger) *SearXNGClient {
	return &SearXNGClient{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		resultsPerPage: cfg.ResultsPerPage,
		client:         httpclient.NewDefaultHTTPClient(cfg.Timeout.Duration),
		logger:         logger,
	}
}

// searxngResponse mirrors the fields we consume from the JSON API.
type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Engine  string  `json:"engine"`
	Score   float64 `json:"score"`
}

// Search runs a query and returns normalized results. Results without a URL
// or title are skipped.
func (c *SearXNGClient) Search(ctx context.Context, query string, maxResults int, category string) ([]models.WebResult, error) {
	if maxResults <= 0 {
		maxResults = c.resultsPerPage
	}
	if maxResults > maxResultsPerRequest {
		maxResults = maxResultsPerRequest
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("categories", mapCategory(category))
	params.Set("results", strconv.Itoa(maxResults))
	params.Set("language", "en")

	endpoint := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().
		Str("query", query).
		Str("category", mapCategory(category)).
		Msg("Performing web search")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed with status %d", resp.StatusCode)
	}

	var parsed searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	results := make([]models.WebResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		score := r.Score
		if score == 0 {
			// Most engines don't score; assume high relevance
			score = 0.95
		}
		// Engine scores are unbounded; relevance stays in [0, 1]
		if score > 1 {
			score = 1
		} else if score < 0 {
			score = 0
		}
		engine := r.Engine
		if engine == "" {
			engine = "web"
		}
		results = append(results, models.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Engine:  engine,
			Score:   score,
		})
		if len(results) >= maxResults {
			break
		}
	}

	c.logger.Debug().
		Int("count", len(results)).
		Msg("Web search complete")

	return results, nil
}

// mapCategory maps a search type to a SearXNG category. Unknown types fall
// back to general.
func mapCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "general", "news", "images", "videos", "files", "science", "it", "social media":
		return strings.ToLower(strings.TrimSpace(category))
	default:
		return "general"
	}
}
