package retrieval

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// WebBackend answers subqueries from web search result snippets.
type WebBackend struct {
	search   interfaces.WebSearchProvider
	provider interfaces.CompletionProvider
	logger   arbor.ILogger
}

// NewWebBackend creates a web retrieval backend.
func NewWebBackend(search interfaces.WebSearchProvider, provider interfaces.CompletionProvider, logger arbor.ILogger) *WebBackend {
	return &WebBackend{
		search:   search,
		provider: provider,
		logger:   logger,
	}
}

// SourceType identifies the backend variant.
func (b *WebBackend) SourceType() models.SourceType {
	return models.SourceTypeWeb
}

// Retrieve searches the web and answers the subquery from the result
// snippets.
func (b *WebBackend) Retrieve(ctx context.Context, subquery string, maxResults int) *models.RetrievalResult {
	results, err := b.search.Search(ctx, subquery, maxResults, "general")
	if err != nil {
		b.logger.Warn().Str("subquery", subquery).Err(err).Msg("Web search failed")
		return &models.RetrievalResult{
			Answer: fmt.Sprintf("Error searching the web: %v", err),
		}
	}

	if len(results) == 0 {
		return &models.RetrievalResult{
			Answer: fmt.Sprintf("No web search results found for '%s'.", subquery),
		}
	}

	contexts := make([]models.Context, len(results))
	for i, r := range results {
		contexts[i] = models.Context{
			DocumentID:    urlDocumentID("web", r.URL),
			DocumentTitle: r.Title,
			Content:       r.Snippet,
			Score:         clampScore(r.Score),
			URL:           r.URL,
			SourceType:    models.SourceTypeWeb,
		}
	}

	answer, err := b.provider.Generate(ctx, interfaces.CompletionRequest{
		Prompt:    webAnswerPrompt(subquery, formatWebResults(contexts)),
		MaxTokens: 1000,
	})
	if err != nil {
		b.logger.Warn().Str("subquery", subquery).Err(err).Msg("Web answer generation failed")
		answer = fmt.Sprintf("Error generating answer: %v", err)
	}

	return &models.RetrievalResult{
		Answer:   answer,
		Contexts: contexts,
	}
}

// urlDocumentID derives a stable context ID from a URL.
func urlDocumentID(prefix, url string) string {
	h := fnv.New32a()
	h.Write([]byte(url))
	return fmt.Sprintf("%s_%08x", prefix, h.Sum32())
}

// clampScore bounds a relevance score to [0, 1].
func clampScore(s float64) float64 {
	switch {
	case s > 1:
		return 1
	case s < 0:
		return 0
	}
	return s
}
