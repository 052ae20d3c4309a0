package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// deepWebScore is assigned to analyzed page contexts: content that was
// fetched and analyzed ranks above plain search snippets.
const deepWebScore = 0.98

// analysisContentLimit caps the page content passed to the per-page
// analysis prompt.
const analysisContentLimit = 10000

// DeepWebBackend answers subqueries by fetching the top search hits and
// analyzing their full content.
type DeepWebBackend struct {
	search   interfaces.WebSearchProvider
	fetcher  interfaces.PageFetcher
	provider interfaces.CompletionProvider
	maxURLs  int
	logger   arbor.ILogger
}

// NewDeepWebBackend creates a deep web retrieval backend. maxURLs bounds
// the number of pages fetched per subquery.
func NewDeepWebBackend(search interfaces.WebSearchProvider, fetcher interfaces.PageFetcher, provider interfaces.CompletionProvider, maxURLs int, logger arbor.ILogger) *DeepWebBackend {
	if maxURLs <= 0 {
		maxURLs = 5
	}
	return &DeepWebBackend{
		search:   search,
		fetcher:  fetcher,
		provider: provider,
		maxURLs:  maxURLs,
		logger:   logger,
	}
}

// SourceType identifies the backend variant.
func (b *DeepWebBackend) SourceType() models.SourceType {
	return models.SourceTypeDeepWeb
}

// Retrieve searches the web, fetches the top hits through the bounded
// fetch pool, analyzes each page against the subquery, and answers from
// the analyses. Pages that fail to fetch or analyze are dropped.
func (b *DeepWebBackend) Retrieve(ctx context.Context, subquery string, maxResults int) *models.RetrievalResult {
	results, err := b.search.Search(ctx, subquery, b.maxURLs, "general")
	if err != nil {
		b.logger.Warn().Str("subquery", subquery).Err(err).Msg("Web search failed")
		return &models.RetrievalResult{
			Answer: fmt.Sprintf("Error searching the web: %v", err),
		}
	}

	urls := make([]string, 0, b.maxURLs)
	titles := make(map[string]string, b.maxURLs)
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		urls = append(urls, r.URL)
		titles[r.URL] = r.Title
		if len(urls) >= b.maxURLs {
			break
		}
	}

	if len(urls) == 0 {
		return &models.RetrievalResult{
			Answer: fmt.Sprintf("No detailed information found for '%s'", subquery),
		}
	}

	pages := b.fetcher.FetchAll(ctx, urls)
	b.logger.Debug().
		Str("subquery", subquery).
		Int("urls", len(urls)).
		Int("fetched", len(pages)).
		Msg("Fetched pages for analysis")

	var contexts []models.Context
	for _, page := range pages {
		content := page.Content
		if len(content) > analysisContentLimit {
			content = content[:analysisContentLimit]
		}

		analysis, err := b.provider.Generate(ctx, interfaces.CompletionRequest{
			Prompt:    contentAnalysisPrompt(subquery, page, content),
			MaxTokens: 500,
		})
		if err != nil {
			b.logger.Warn().Str("url", page.URL).Err(err).Msg("Page analysis failed")
			continue
		}

		title := page.Title
		if t := titles[page.URL]; t != "" {
			title = t
		}

		contexts = append(contexts, models.Context{
			DocumentID:    urlDocumentID("deep_web", page.URL),
			DocumentTitle: title,
			Content:       analysis,
			Score:         deepWebScore,
			URL:           page.URL,
			SourceType:    models.SourceTypeDeepWeb,
		})
	}

	if len(contexts) == 0 {
		return &models.RetrievalResult{
			Answer: fmt.Sprintf("No detailed information found for '%s'", subquery),
		}
	}

	var sources strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&sources, "Source %d: %s (%s)\n%s\n\n", i+1, c.DocumentTitle, c.URL, c.Content)
	}

	answer, err := b.provider.Generate(ctx, interfaces.CompletionRequest{
		Prompt:    subqueryAnalysisPrompt(subquery, sources.String()),
		MaxTokens: 600,
	})
	if err != nil {
		b.logger.Warn().Str("subquery", subquery).Err(err).Msg("Subquery analysis failed")
		answer = fmt.Sprintf("Error analyzing sources for '%s': %v", subquery, err)
	}

	return &models.RetrievalResult{
		Answer:   answer,
		Contexts: contexts,
	}
}
