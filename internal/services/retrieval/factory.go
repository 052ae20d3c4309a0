package retrieval

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// Dependencies carries the collaborators backends are built from. Only the
// fields the selected backend needs have to be set.
type Dependencies struct {
	Provider interfaces.CompletionProvider
	Index    interfaces.DocumentIndex
	Search   interfaces.WebSearchProvider
	Fetcher  interfaces.PageFetcher
}

// NewBackend creates the retrieval backend selected by config. An unknown
// backend name falls back to the document backend with a warning.
func NewBackend(cfg *common.SearchConfig, deps Dependencies, logger arbor.ILogger) (interfaces.RetrievalBackend, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("retrieval backend requires a completion provider")
	}

	kind, err := models.ParseSourceType(cfg.Backend)
	if err != nil {
		logger.Warn().
			Str("backend", cfg.Backend).
			Msg("Unknown retrieval backend, falling back to document backend")
		kind = models.SourceTypeDocument
	}

	switch kind {
	case models.SourceTypeWeb:
		if deps.Search == nil {
			return nil, fmt.Errorf("web backend requires a web search provider")
		}
		logger.Info().Msg("Using web retrieval backend")
		return NewWebBackend(deps.Search, deps.Provider, logger), nil

	case models.SourceTypeDeepWeb:
		if deps.Search == nil {
			return nil, fmt.Errorf("deep web backend requires a web search provider")
		}
		if deps.Fetcher == nil {
			return nil, fmt.Errorf("deep web backend requires a page fetcher")
		}
		logger.Info().Int("max_urls", cfg.DeepWebMaxURLs).Msg("Using deep web retrieval backend")
		return NewDeepWebBackend(deps.Search, deps.Fetcher, deps.Provider, cfg.DeepWebMaxURLs, logger), nil

	default:
		if deps.Index == nil {
			return nil, fmt.Errorf("document backend requires a document index")
		}
		logger.Info().Msg("Using document retrieval backend")
		return NewDocumentBackend(deps.Index, deps.Provider, logger), nil
	}
}
