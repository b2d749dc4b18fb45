package corpus

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/papl/core"
	"gopkg.in/yaml.v3"
)

// sectionSplit matches heading markers of any level. Splitting on it keeps
// the heading text as the first line of the following segment.
var sectionSplit = regexp.MustCompile(`\n#{1,6}\s+`)

const maxSectionTitleLength = 100

// Builder constructs a Corpus from the three upstream data sources.
type Builder struct {
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// NewBuilder creates a new corpus builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the document corpus from pricing records, claiming rules,
// and the guidance text blob. Documents are emitted pricing first, then
// rules, then guidance; chunk ids are derived from source keys so rebuilding
// from unchanged input yields an identical corpus. Malformed records are
// skipped rather than failing the whole build.
func (b *Builder) Build(items []*core.SupportItem, rules map[string]any, guidance string) *Corpus {
	c := &Corpus{
		byID:     make(map[string]*core.Document),
		items:    make(map[string]*core.SupportItem),
		rules:    make(map[string]*core.ClaimingRule),
		sections: make(map[int]*core.GuidanceSection),
	}

	for _, item := range items {
		if err := core.ValidateSupportItem(item); err != nil {
			// Upstream conversion already filters these; skip quietly.
			b.logger.Debug("skipping pricing record", "err", err)
			continue
		}
		doc := b.buildPricingDocument(item)
		c.documents = append(c.documents, doc)
		c.byID[doc.ChunkID] = doc
		c.items[item.Number] = item
	}

	// Sorted rule-name order keeps document order deterministic.
	ruleNames := make([]string, 0, len(rules))
	for name := range rules {
		ruleNames = append(ruleNames, name)
	}
	sort.Strings(ruleNames)
	for _, name := range ruleNames {
		rule := &core.ClaimingRule{Name: name, Content: rules[name]}
		if err := core.ValidateClaimingRule(rule); err != nil {
			b.logger.Warn("skipping claiming rule", "err", err)
			continue
		}
		doc := b.buildRuleDocument(rule)
		c.documents = append(c.documents, doc)
		c.byID[doc.ChunkID] = doc
		c.rules[name] = rule
	}

	for _, section := range SplitGuidance(guidance) {
		doc := b.buildGuidanceDocument(section)
		c.documents = append(c.documents, doc)
		c.byID[doc.ChunkID] = doc
		c.sections[section.Index] = section
	}

	b.logger.Info("built document corpus",
		"documents", len(c.documents),
		"pricing", len(c.items),
		"rules", len(c.rules),
		"guidance", len(c.sections))

	return c
}

// buildPricingDocument synthesizes a human-readable summary of one support item.
func (b *Builder) buildPricingDocument(item *core.SupportItem) *core.Document {
	var parts []string

	parts = append(parts, "Support Item: "+orDefault(item.Name, "Unknown"))
	parts = append(parts, "Support Number: "+orDefault(item.Number, "N/A"))
	parts = append(parts, "Category: "+orDefault(item.Category, "Not specified"))
	parts = append(parts, "Registration Group: "+orDefault(item.RegistrationGroup, "Not specified"))
	parts = append(parts, "Unit of Measure: "+orDefault(item.Unit, "Not specified"))

	if len(item.PriceLimits) > 0 {
		parts = append(parts, "\nPricing by State:")
		for _, state := range core.States {
			limit, ok := item.PriceLimits[state]
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("- %s: $%.2f per %s",
				state, limit.Price, orDefault(item.Unit, "unit")))
		}
	}

	if item.QuoteRequired {
		parts = append(parts, "\nNote: Quote required before claiming this support.")
	} else {
		parts = append(parts, "\nNote: Price is set, no quote required.")
	}

	return &core.Document{
		ChunkID:    "pricing_" + item.Number,
		SourceType: core.SourceTypePricing,
		Content:    strings.Join(parts, "\n"),
		Item:       item,
	}
}

// buildRuleDocument renders one claiming rule as a document with its
// structure serialized to YAML.
func (b *Builder) buildRuleDocument(rule *core.ClaimingRule) *core.Document {
	parts := []string{
		"Claiming Rule: " + HumanizeRuleName(rule.Name),
		"\nRule Details:",
		RenderRuleYAML(rule.Content),
	}

	return &core.Document{
		ChunkID:    "rule_" + rule.Name,
		SourceType: core.SourceTypeRule,
		Content:    strings.Join(parts, "\n"),
		Rule:       rule,
	}
}

func (b *Builder) buildGuidanceDocument(section *core.GuidanceSection) *core.Document {
	return &core.Document{
		ChunkID:    fmt.Sprintf("guidance_%d", section.Index),
		SourceType: core.SourceTypeGuidance,
		Content:    section.Text,
		Section:    section,
	}
}

// SplitGuidance splits guidance markdown into heading-delimited sections.
// Section indexes follow the raw split, so index 0 is the preamble before
// the first heading. Empty segments are dropped but keep their index,
// preserving stable section identity across the index and the corpus.
func SplitGuidance(markdown string) []*core.GuidanceSection {
	var sections []*core.GuidanceSection

	for i, segment := range sectionSplit.Split(markdown, -1) {
		if strings.TrimSpace(segment) == "" {
			continue
		}

		title := segment
		if idx := strings.IndexByte(title, '\n'); idx >= 0 {
			title = title[:idx]
		}
		if len(title) > maxSectionTitleLength {
			cut := maxSectionTitleLength
			// Back up so a multi-byte rune is never split.
			for cut > 0 && !utf8.RuneStart(title[cut]) {
				cut--
			}
			title = title[:cut]
		}
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("Section %d", i)
		}

		sections = append(sections, &core.GuidanceSection{
			Index: i,
			Title: title,
			Text:  segment,
		})
	}

	return sections
}

// RenderRuleYAML serializes a rule structure to YAML for display and
// substring scoring. Map keys are emitted in sorted order, so rendering
// is deterministic for a given structure.
func RenderRuleYAML(content any) string {
	out, err := yaml.Marshal(content)
	if err != nil {
		// Rule structures come from decoded YAML, so this should not
		// happen; fall back to a flat representation rather than failing.
		return fmt.Sprintf("%v", content)
	}
	return string(out)
}

// HumanizeRuleName converts a snake_case rule name to a display title,
// e.g. "transport_rules" becomes "Transport Rules".
func HumanizeRuleName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
