package search

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/corpus"
)

// Per-source scoring weights. All scores are additive; higher is better.
const (
	nameTermWeight     = 3.0 // per query term also present in the item name
	categoryWeight     = 2.0 // flat, if any query term is a substring of the category
	stateModifierBonus = 1.0 // per matched state modifier priced for the item
	ruleTermWeight     = 1.5 // per query term contained in the rendered rule
	guidanceTermWeight = 1.0 // per query term contained in the section text
	focusBoost         = 1.5 // multiplier when the intent focus matches the source
)

const guidanceResultPreview = 500

// Engine is the lexical search engine over a built corpus. The corpus and
// its indexes are read-only after construction, so an Engine is safe to
// call concurrently from multiple readers.
type Engine struct {
	corpus *corpus.Corpus
	index  *Index
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a lexical search engine for the given corpus, building
// its inverted indexes.
func NewEngine(c *corpus.Corpus, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, ErrCorpusRequired
	}

	e := &Engine{
		corpus: c,
		index:  BuildIndex(c),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Search classifies the query's intent, runs the sub-searches that intent
// selects, and returns the merged results ranked by relevance score.
// Ties keep insertion order (pricing, then rules, then guidance), so
// repeated calls over the same corpus return identical orderings.
// A query with no usable terms yields an empty list, not an error.
func (e *Engine) Search(query string, maxResults int) []core.SearchResult {
	intent := ClassifyIntent(query)
	e.logger.Debug("classified query intent",
		"query", query, "type", intent.Type.String(), "focus", intent.Focus)

	var results []core.SearchResult

	switch intent.Type {
	case IntentPricing:
		results = append(results, e.searchPricing(query, intent)...)
	case IntentClaiming:
		results = append(results, e.searchRules(query, intent)...)
	case IntentDefinition:
		results = append(results, e.searchGuidance(query, intent)...)
	case IntentBoth:
		results = append(results, e.searchRules(query, intent)...)
		results = append(results, e.searchGuidance(query, intent)...)
	default:
		results = append(results, e.searchPricing(query, intent)...)
		results = append(results, e.searchRules(query, intent)...)
		results = append(results, e.searchGuidance(query, intent)...)
	}

	// Stable sort keeps ties reproducible.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if maxResults < 0 {
		maxResults = 0
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results
}

// searchPricing looks up candidate support items for the query terms and
// scores each against the query. A document matching any query term is a
// candidate (OR semantics).
func (e *Engine) searchPricing(query string, intent Intent) []core.SearchResult {
	terms := ExtractTerms(query)

	var results []core.SearchResult
	for _, number := range e.candidateKeys(terms, e.index.LookupPricing) {
		item := e.corpus.SupportItem(number)
		if item == nil {
			continue
		}

		results = append(results, core.SearchResult{
			SourceType:  core.SourceTypePricing,
			Score:       e.scoreSupportItem(item, terms, intent),
			Title:       orUnknown(item.Name),
			Content:     formatPricingResult(item, intent),
			MatchReason: "Matches: " + joinFirst(terms, 3),
			Document:    e.corpus.Document("pricing_" + number),
		})
	}

	return results
}

// searchRules looks up candidate claiming rules and scores each by substring
// containment of query terms in the rendered rule structure.
func (e *Engine) searchRules(query string, intent Intent) []core.SearchResult {
	terms := ExtractTerms(query)

	var results []core.SearchResult
	for _, name := range e.candidateKeys(terms, e.index.LookupRules) {
		rule := e.corpus.Rule(name)
		if rule == nil {
			continue
		}

		rendered := corpus.RenderRuleYAML(rule.Content)

		results = append(results, core.SearchResult{
			SourceType:  core.SourceTypeRule,
			Score:       scoreRule(rendered, terms, intent),
			Title:       corpus.HumanizeRuleName(name),
			Content:     "```yaml\n" + rendered + "\n```",
			MatchReason: "Claiming rule for: " + name,
			Document:    e.corpus.Document("rule_" + name),
		})
	}

	return results
}

// searchGuidance looks up candidate guidance sections and scores each by
// substring containment of query terms in the section text.
func (e *Engine) searchGuidance(query string, intent Intent) []core.SearchResult {
	terms := ExtractTerms(query)

	var results []core.SearchResult
	for _, idx := range e.candidateSections(terms) {
		section := e.corpus.Section(idx)
		if section == nil {
			continue
		}

		preview := truncateOnRuneBoundary(section.Text, guidanceResultPreview)

		results = append(results, core.SearchResult{
			SourceType:  core.SourceTypeGuidance,
			Score:       scoreGuidance(section.Text, terms, intent),
			Title:       section.Title,
			Content:     preview,
			MatchReason: "Guidance contains: " + joinFirst(terms, 3),
			Document:    e.corpus.Document(fmt.Sprintf("guidance_%d", idx)),
		})
	}

	return results
}

// candidateKeys unions index lookups across all query terms, preserving
// first-seen order so downstream ranking is deterministic.
func (e *Engine) candidateKeys(terms []string, lookup func(string) []string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, term := range terms {
		for _, key := range lookup(term) {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

func (e *Engine) candidateSections(terms []string) []int {
	var idxs []int
	seen := make(map[int]bool)
	for _, term := range terms {
		for _, idx := range e.index.LookupGuidance(term) {
			if !seen[idx] {
				seen[idx] = true
				idxs = append(idxs, idx)
			}
		}
	}
	return idxs
}

// scoreSupportItem scores how well a support item matches the query:
// +3.0 per query term present in the item name's terms, +2.0 flat if any
// query term is a substring of the category, +1.0 per state modifier the
// item has a price limit for.
func (e *Engine) scoreSupportItem(item *core.SupportItem, terms []string, intent Intent) float64 {
	var score float64

	nameTerms := make(map[string]bool)
	for _, t := range ExtractTerms(item.Name) {
		nameTerms[t] = true
	}
	matched := make(map[string]bool)
	for _, term := range terms {
		if nameTerms[term] && !matched[term] {
			matched[term] = true
			score += nameTermWeight
		}
	}

	category := strings.ToLower(item.Category)
	for _, term := range terms {
		if strings.Contains(category, term) {
			score += categoryWeight
			break
		}
	}

	for _, state := range intent.StateModifiers() {
		if _, ok := item.PriceLimits[state]; ok {
			score += stateModifierBonus
		}
	}

	return score
}

func scoreRule(rendered string, terms []string, intent Intent) float64 {
	var score float64
	lower := strings.ToLower(rendered)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += ruleTermWeight
		}
	}

	if intent.Focus == FocusRules {
		score *= focusBoost
	}

	return score
}

func scoreGuidance(section string, terms []string, intent Intent) float64 {
	var score float64
	lower := strings.ToLower(section)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += guidanceTermWeight
		}
	}

	if intent.Focus == FocusGuidance {
		score *= focusBoost
	}

	return score
}

// formatPricingResult renders a support item for display, surfacing the
// price for any state the query asked about.
func formatPricingResult(item *core.SupportItem, intent Intent) string {
	var sb strings.Builder

	sb.WriteString("**" + orUnknown(item.Name) + "**\n\n")

	for _, state := range intent.StateModifiers() {
		if limit, ok := item.PriceLimits[state]; ok {
			fmt.Fprintf(&sb, "Price in %s: $%.2f\n", state, limit.Price)
		} else {
			fmt.Fprintf(&sb, "Price in %s: $%.2f\n", state, 0.0)
		}
	}

	sb.WriteString("\nCategory: " + orNotSpecified(item.Category) + "\n")
	sb.WriteString("Unit: " + orNotSpecified(item.Unit) + "\n")

	return sb.String()
}

// truncateOnRuneBoundary cuts s at no more than max bytes, backing up so
// a multi-byte rune is never split.
func truncateOnRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func joinFirst(terms []string, n int) string {
	if len(terms) > n {
		terms = terms[:n]
	}
	return strings.Join(terms, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
