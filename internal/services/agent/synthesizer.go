package agent

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// Synthesizer combines the per-subquery answers into one final answer.
type Synthesizer struct {
	provider interfaces.CompletionProvider
	web      bool
	logger   arbor.ILogger
}

func NewSynthesizer(provider interfaces.CompletionProvider, web bool, logger arbor.ILogger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		web:      web,
		logger:   logger,
	}
}

// Synthesize produces the final answer. On provider failure the answer is a
// diagnostic string and the error is returned alongside it for reporting;
// the caller still gets a usable result either way.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []models.IntermediateResult, contextView string) (string, error) {
	answer, err := s.provider.Generate(ctx, interfaces.CompletionRequest{
		Prompt:    synthesisPrompt(query, formatResults(results, s.web), contextView, s.web),
		MaxTokens: 1500,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Synthesis failed")
		return fmt.Sprintf("Error synthesizing results: %v", err), err
	}
	return answer, nil
}
