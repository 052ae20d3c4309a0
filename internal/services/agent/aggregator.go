package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// DefaultContextBudget caps the character length of the ranked context view
// handed to synthesis. DefaultInformedContextBudget caps the smaller view
// used for informed decomposition.
const (
	DefaultContextBudget         = 4000
	DefaultInformedContextBudget = 2000
)

const contextTruncationNote = "...(additional context truncated due to length)..."

const contextViewHeader = "Context information:\n\n"

// ContextAggregator flattens and formats the contexts gathered across
// subqueries.
type ContextAggregator struct{}

func NewContextAggregator() *ContextAggregator {
	return &ContextAggregator{}
}

// Collect flattens the contexts of all intermediate results, preserving
// subquery order. Duplicates are kept: the same source surfacing for several
// subqueries is a relevance signal the ranking in FormatForPrompt can use.
func (a *ContextAggregator) Collect(results []models.IntermediateResult) []models.Context {
	var all []models.Context
	for _, r := range results {
		all = append(all, r.Contexts...)
	}
	return all
}

// FormatForPrompt renders contexts as a ranked source list under a
// "Context information:" header, highest score first, cut off at budget
// characters (the header is not counted). A block that would cross the
// budget is dropped along with everything after it; when at least one block
// made it in, a truncation note marks the cut. budget <= 0 means the
// default.
func (a *ContextAggregator) FormatForPrompt(contexts []models.Context, budget int) string {
	if len(contexts) == 0 {
		return ""
	}
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	ranked := make([]models.Context, len(contexts))
	copy(ranked, contexts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	var b strings.Builder
	for i, c := range ranked {
		title := c.DocumentTitle
		if title == "" {
			title = "Unknown"
		}

		var block strings.Builder
		fmt.Fprintf(&block, "[Source %d] From '%s' (relevance: %.2f):\n", i+1, title, c.Score)
		if c.URL != "" {
			fmt.Fprintf(&block, "URL: %s\n", c.URL)
		}
		block.WriteString(c.Content)
		block.WriteString("\n\n")

		if b.Len()+block.Len() > budget {
			if i > 0 {
				b.WriteString(contextTruncationNote)
			}
			break
		}
		b.WriteString(block.String())
	}
	if b.Len() == 0 {
		return ""
	}
	return contextViewHeader + strings.TrimRight(b.String(), "\n")
}

// formatResults renders the per-subquery answers for the synthesis prompt.
func formatResults(results []models.IntermediateResult, web bool) string {
	label := "Subquery"
	if web {
		label = "Search Query"
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%s %d: %s\nResults: %s\n\n", label, i+1, r.Subquery, r.Answer)
	}
	return strings.TrimRight(b.String(), "\n")
}
