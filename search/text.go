package search

import (
	"strings"
	"unicode"
)

// Stop words excluded from indexing and query terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
}

const minTermLength = 3

// ExtractTerms normalizes text into searchable terms: lowercase, strip any
// character that is not alphanumeric, whitespace, '-', or '/', split on
// whitespace, and drop stop words and tokens shorter than three characters.
// Deterministic and total; empty input yields no terms.
func ExtractTerms(text string) []string {
	text = strings.ToLower(text)

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			r == '-' || r == '/' {
			return r
		}
		return ' '
	}, text)

	words := strings.Fields(cleaned)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if stopWords[word] || len(word) < minTermLength {
			continue
		}
		terms = append(terms, word)
	}

	return terms
}
