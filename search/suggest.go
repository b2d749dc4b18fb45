package search

import (
	"strings"

	"github.com/poiesic/papl/core"
)

const (
	broadResultThreshold = 50
	similarTermPrefix    = 3
	maxSimilarCollected  = 5
	maxSimilarShown      = 3
)

// SuggestRefinements proposes ways to improve a query given the results it
// produced. A broad result set gets a narrowing hint, an empty one gets
// "did you mean" alternatives from the pricing index, and a query that
// names no state gets a hint to add one.
func (e *Engine) SuggestRefinements(query string, results []core.SearchResult) []string {
	var suggestions []string

	if len(results) > broadResultThreshold {
		suggestions = append(suggestions, "Try being more specific (e.g., add category or state)")
	}

	if len(results) == 0 {
		similar := e.findSimilarTerms(ExtractTerms(query))
		if len(similar) > 0 {
			if len(similar) > maxSimilarShown {
				similar = similar[:maxSimilarShown]
			}
			suggestions = append(suggestions, "Did you mean: "+strings.Join(similar, ", ")+"?")
		}
	}

	if !mentionsState(query) {
		suggestions = append(suggestions, "Add your state to see local pricing (e.g., 'in NSW')")
	}

	return suggestions
}

// findSimilarTerms matches query terms against the pricing index by shared
// 3-character prefix, in either direction. The index term list is sorted,
// so the suggestions are deterministic.
func (e *Engine) findSimilarTerms(terms []string) []string {
	var similar []string
	seen := make(map[string]bool)

	for _, term := range terms {
		if len(term) < similarTermPrefix {
			continue
		}
		prefix := term[:similarTermPrefix]
		for _, indexed := range e.index.PricingTerms() {
			if len(similar) >= maxSimilarCollected {
				return similar
			}
			if seen[indexed] {
				continue
			}
			if strings.Contains(indexed, prefix) ||
				(len(indexed) >= similarTermPrefix && strings.Contains(term, indexed[:similarTermPrefix])) {
				seen[indexed] = true
				similar = append(similar, indexed)
			}
		}
	}

	return similar
}

func mentionsState(query string) bool {
	lower := strings.ToLower(query)
	for _, state := range []string{"nsw", "vic", "qld", "sa", "wa", "tas", "nt", "act"} {
		if strings.Contains(lower, state) {
			return true
		}
	}
	return false
}
