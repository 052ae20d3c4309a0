package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
)

// Subquery count caps. The prompts ask for 2-4 (blind) and 2-3 (informed);
// anything beyond that in the response is dropped.
const (
	maxBlindSubqueries    = 4
	maxInformedSubqueries = 3
)

// Decomposer breaks a query into subqueries. It never fails: when the
// provider errors or returns nothing usable, a deterministic fallback set
// is produced and the error is reported alongside it.
type Decomposer struct {
	provider interfaces.CompletionProvider
	web      bool // phrase subqueries for search engines
	logger   arbor.ILogger
}

// NewDecomposer creates a decomposer. web selects search-engine phrasing
// over document-question phrasing.
func NewDecomposer(provider interfaces.CompletionProvider, web bool, logger arbor.ILogger) *Decomposer {
	return &Decomposer{
		provider: provider,
		web:      web,
		logger:   logger,
	}
}

// Blind decomposes the query from its text alone. The returned slice is
// never empty; on provider failure it is the original query, and the error
// is returned for reporting.
func (d *Decomposer) Blind(ctx context.Context, query string) ([]string, error) {
	raw, err := d.provider.Generate(ctx, interfaces.CompletionRequest{
		Prompt:    blindDecompositionPrompt(query, d.web),
		MaxTokens: 500,
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("Blind decomposition failed, using original query")
		return []string{query}, err
	}

	subs := parseSubqueries(raw, maxBlindSubqueries)
	if len(subs) == 0 {
		d.logger.Warn().Msg("Blind decomposition returned no subqueries, using original query")
		return []string{query}, nil
	}

	d.logger.Debug().Int("count", len(subs)).Msg("Decomposed query")
	return subs, nil
}

// Informed decomposes with the initial retrieval findings as context.
// contextBlock is the budget-truncated view of the initial contexts. On
// provider failure a deterministic follow-up pair derived from the query
// is returned along with the error.
func (d *Decomposer) Informed(ctx context.Context, query, contextBlock string) ([]string, error) {
	raw, err := d.provider.Generate(ctx, interfaces.CompletionRequest{
		Prompt:    informedDecompositionPrompt(query, contextBlock, d.web),
		MaxTokens: 500,
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("Informed decomposition failed, using fallback subqueries")
		return d.fallbackSubqueries(query), err
	}

	subs := parseSubqueries(raw, maxInformedSubqueries)
	if len(subs) == 0 {
		d.logger.Warn().Msg("Informed decomposition returned no subqueries, using fallback subqueries")
		return d.fallbackSubqueries(query), nil
	}

	d.logger.Debug().Int("count", len(subs)).Msg("Decomposed query with initial context")
	return subs, nil
}

func (d *Decomposer) fallbackSubqueries(query string) []string {
	if d.web {
		return []string{
			fmt.Sprintf("%s latest information", query),
			fmt.Sprintf("%s alternative perspectives", query),
		}
	}
	return []string{
		fmt.Sprintf("What additional details can be found about %s?", query),
		fmt.Sprintf("Are there any alternative perspectives on %s?", query),
	}
}

var bulletRe = regexp.MustCompile(`^\s*[-•*]\s*`)

// parseSubqueries extracts one subquery per non-empty line, stripping
// leading bullet markers, up to max lines. Lines that repeat an earlier
// subquery (ignoring case and whitespace) are dropped, so the result holds
// unique non-empty queries.
func parseSubqueries(raw string, max int) []string {
	seen := make(map[string]bool)
	var subs []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		key := strings.ToLower(strings.Join(strings.Fields(line), " "))
		if seen[key] {
			continue
		}
		seen[key] = true
		subs = append(subs, line)
		if len(subs) >= max {
			break
		}
	}
	return subs
}
