package interfaces

import (
	"context"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// WebSearchProvider performs web searches and returns normalized results.
type WebSearchProvider interface {
	// Search runs a query against the search engine. category maps to the
	// engine's category system ("general", "news", "science", ...); an
	// unknown category falls back to general.
	Search(ctx context.Context, query string, maxResults int, category string) ([]models.WebResult, error)
}
