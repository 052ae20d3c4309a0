package badger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// Search ranks stored chunks against the query by term overlap: the score
// is the fraction of distinct query terms found in the chunk, so it stays
// in [0, 1]. Chunks matching no term are excluded.
//
// This is the local stand-in for an external vector index; it satisfies
// interfaces.DocumentIndex.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]models.ChunkHit, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var chunks []models.Chunk
	if err := s.store.Find(&chunks, nil); err != nil {
		return nil, fmt.Errorf("failed to scan chunks: %w", err)
	}

	hits := make([]models.ChunkHit, 0, len(chunks))
	for _, chunk := range chunks {
		haystack := strings.ToLower(chunk.Content + " " + chunk.DocumentTitle)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, models.ChunkHit{
			Chunk: chunk,
			Score: float64(matched) / float64(len(terms)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	s.logger.Debug().
		Str("query", query).
		Int("hits", len(hits)).
		Msg("Index search complete")

	return hits, nil
}

// queryTerms lowercases and deduplicates the query words, dropping
// single-character terms that would match almost anything.
func queryTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		term := strings.Trim(field, ".,;:!?\"'()[]")
		if len(term) < 2 || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}
