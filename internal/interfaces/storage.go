package interfaces

import (
	"context"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// DocumentIndex searches ingested chunks. Implementations may be backed by
// a local store or an external vector index.
type DocumentIndex interface {
	// Search returns up to limit chunks ranked by relevance, best first.
	// Scores are normalized to [0, 1].
	Search(ctx context.Context, query string, limit int) ([]models.ChunkHit, error)
}

// ChunkStore persists documents and their chunks.
type ChunkStore interface {
	// SaveDocument stores a document and its chunks. Re-saving an existing
	// document replaces its previous chunks.
	SaveDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error

	// GetDocument returns a document by ID, or an error if not found.
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	// CountChunks returns the number of chunks stored for a document.
	CountChunks(ctx context.Context, documentID string) (int, error)
}
