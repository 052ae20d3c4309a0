package agent

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// FanOutExecutor runs each subquery against the retrieval backend and
// collects the per-subquery results in order.
type FanOutExecutor struct {
	backend    interfaces.RetrievalBackend
	maxResults int
	logger     arbor.ILogger
}

func NewFanOutExecutor(backend interfaces.RetrievalBackend, maxResults int, logger arbor.ILogger) *FanOutExecutor {
	return &FanOutExecutor{
		backend:    backend,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Run retrieves evidence for every subquery. Backends never fail, so the
// returned slice always has one entry per subquery, in input order.
func (e *FanOutExecutor) Run(ctx context.Context, subqueries []string) []models.IntermediateResult {
	results := make([]models.IntermediateResult, 0, len(subqueries))
	for i, sub := range subqueries {
		e.logger.Debug().
			Int("index", i+1).
			Int("total", len(subqueries)).
			Str("subquery", sub).
			Msg("Retrieving for subquery")

		res := e.backend.Retrieve(ctx, sub, e.maxResults)
		if res == nil {
			res = &models.RetrievalResult{Answer: "No results available."}
		}

		results = append(results, models.IntermediateResult{
			Subquery: sub,
			Answer:   res.Answer,
			Contexts: res.Contexts,
		})
	}
	return results
}
