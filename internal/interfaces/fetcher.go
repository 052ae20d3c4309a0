package interfaces

import (
	"context"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// PageFetcher retrieves and cleans web pages for analysis.
type PageFetcher interface {
	// Fetch downloads one page, strips boilerplate and converts the main
	// content to markdown. Returns an error for invalid URLs and transport
	// failures; non-HTML responses return a page with Success=false.
	Fetch(ctx context.Context, rawURL string) (*models.FetchedPage, error)

	// FetchAll fetches multiple URLs through a bounded worker pool and
	// returns the successful pages in input order. Failed fetches are
	// dropped.
	FetchAll(ctx context.Context, urls []string) []*models.FetchedPage
}
