// Package retrieval implements the retrieval backends a subquery can be
// answered against: local documents, web search snippets, and analyzed web
// pages. All backends are total: errors degrade to a result whose answer
// explains what happened.
package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// DocumentBackend answers subqueries from the local document index.
type DocumentBackend struct {
	index    interfaces.DocumentIndex
	provider interfaces.CompletionProvider
	logger   arbor.ILogger
}

// NewDocumentBackend creates a document retrieval backend.
func NewDocumentBackend(index interfaces.DocumentIndex, provider interfaces.CompletionProvider, logger arbor.ILogger) *DocumentBackend {
	return &DocumentBackend{
		index:    index,
		provider: provider,
		logger:   logger,
	}
}

// SourceType identifies the backend variant.
func (b *DocumentBackend) SourceType() models.SourceType {
	return models.SourceTypeDocument
}

// Retrieve searches the index and answers the subquery from the retrieved
// chunks.
func (b *DocumentBackend) Retrieve(ctx context.Context, subquery string, maxResults int) *models.RetrievalResult {
	hits, err := b.index.Search(ctx, subquery, maxResults)
	if err != nil {
		b.logger.Warn().Str("subquery", subquery).Err(err).Msg("Document search failed")
		return &models.RetrievalResult{
			Answer: fmt.Sprintf("Error searching documents: %v", err),
		}
	}

	if len(hits) == 0 {
		return &models.RetrievalResult{
			Answer: fmt.Sprintf("No relevant documents found for '%s'.", subquery),
		}
	}

	contexts := make([]models.Context, len(hits))
	for i, hit := range hits {
		contexts[i] = models.Context{
			DocumentID:    hit.Chunk.DocumentID,
			DocumentTitle: hit.Chunk.DocumentTitle,
			Content:       hit.Chunk.Content,
			Score:         hit.Score,
			SourceType:    models.SourceTypeDocument,
		}
	}

	answer, err := b.provider.Generate(ctx, interfaces.CompletionRequest{
		System:    ragSystemMessage,
		Prompt:    documentPrompt(subquery, contexts),
		MaxTokens: 1000,
	})
	if err != nil {
		b.logger.Warn().Str("subquery", subquery).Err(err).Msg("Document answer generation failed")
		answer = fmt.Sprintf("Error generating answer: %v", err)
	}

	return &models.RetrievalResult{
		Answer:   answer,
		Contexts: contexts,
	}
}
