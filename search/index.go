package search

import (
	"sort"

	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/corpus"
)

// guidanceIndexPrefix bounds how much of each guidance section is indexed.
// Indexing only a prefix keeps the false positive rate on long sections
// bounded, at the cost of possibly missing late-document matches.
const guidanceIndexPrefix = 200

// Index holds per-source-type inverted indexes mapping terms to the natural
// keys of the documents that contain them. Built once over a corpus and
// read-only afterward, so it is safe for concurrent lookups.
type Index struct {
	pricing  map[string][]string // term -> item numbers
	rules    map[string][]string // term -> rule names
	guidance map[string][]int    // term -> section indexes
}

// BuildIndex builds the inverted indexes for a corpus. Indexable text per
// source type: pricing uses name, category, and registration group; rules
// use the rule name; guidance uses the first 200 characters of the section.
func BuildIndex(c *corpus.Corpus) *Index {
	idx := &Index{
		pricing:  make(map[string][]string),
		rules:    make(map[string][]string),
		guidance: make(map[string][]int),
	}

	for _, doc := range c.Documents() {
		switch doc.SourceType {
		case core.SourceTypePricing:
			item := doc.Item
			text := item.Name + " " + item.Category + " " + item.RegistrationGroup
			for _, term := range ExtractTerms(text) {
				idx.pricing[term] = append(idx.pricing[term], item.Number)
			}
		case core.SourceTypeRule:
			for _, term := range ExtractTerms(doc.Rule.Name) {
				idx.rules[term] = append(idx.rules[term], doc.Rule.Name)
			}
		case core.SourceTypeGuidance:
			text := doc.Section.Text
			if len(text) > guidanceIndexPrefix {
				text = text[:guidanceIndexPrefix]
			}
			for _, term := range ExtractTerms(text) {
				idx.guidance[term] = append(idx.guidance[term], doc.Section.Index)
			}
		}
	}

	return idx
}

// LookupPricing returns the item numbers indexed under term.
// Unknown terms yield an empty result, never an error.
func (idx *Index) LookupPricing(term string) []string {
	return idx.pricing[term]
}

// LookupRules returns the rule names indexed under term.
func (idx *Index) LookupRules(term string) []string {
	return idx.rules[term]
}

// LookupGuidance returns the guidance section indexes indexed under term.
func (idx *Index) LookupGuidance(term string) []int {
	return idx.guidance[term]
}

// PricingTerms returns all indexed pricing terms in sorted order.
// Used for refinement suggestions.
func (idx *Index) PricingTerms() []string {
	terms := make([]string, 0, len(idx.pricing))
	for term := range idx.pricing {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
