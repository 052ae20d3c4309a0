package interfaces

import (
	"context"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// RetrievalBackend answers a single subquery against one source of evidence
// (local documents, web search snippets, or fetched web pages).
//
// Retrieve never returns nil and never fails: when the underlying source is
// unavailable or empty, the result carries no contexts and an answer that
// says so. This keeps the fan-out stage total, so a run always completes.
type RetrievalBackend interface {
	Retrieve(ctx context.Context, subquery string, maxResults int) *models.RetrievalResult

	// SourceType identifies the backend variant.
	SourceType() models.SourceType
}
