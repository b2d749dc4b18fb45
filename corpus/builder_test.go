package corpus

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/papl/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []*core.SupportItem {
	return []*core.SupportItem{
		{
			Number:            "01_001",
			Name:              "Assessment Recommendation Therapy - Occupational Therapist",
			Category:          "Capacity Building - Improved Daily Living",
			RegistrationGroup: "Therapeutic Supports",
			Unit:              "Hour",
			PriceLimits: map[string]core.PriceLimit{
				"NSW": {Price: 193.99},
				"VIC": {Price: 193.99},
				"NT":  {Price: 205.63},
			},
		},
		{
			Number:        "02_051",
			Name:          "Transport - Specialised Vehicle",
			Category:      "Core - Transport",
			Unit:          "Each",
			QuoteRequired: true,
		},
	}
}

func testRules() map[string]any {
	return map[string]any{
		"transport_rules": map[string]any{
			"description": "Transport supports can be claimed when travel is required",
			"max_claims":  1,
		},
		"cancellation_rules": map[string]any{
			"notice_period": "48 hours",
		},
	}
}

const testGuidance = `This guide explains NDIS pricing arrangements.

## Claiming for Supports

Providers must submit payment requests through the portal.

## Transport Guidance

Transport supports cover travel to and from appointments.
`

func TestBuild(t *testing.T) {
	builder := NewBuilder()
	c := builder.Build(testItems(), testRules(), testGuidance)

	// 2 pricing + 2 rules + 3 guidance (preamble plus two sections)
	assert.Equal(t, 7, c.Len())

	t.Run("documents in build order", func(t *testing.T) {
		docs := c.Documents()
		require.Len(t, docs, 7)

		assert.Equal(t, "pricing_01_001", docs[0].ChunkID)
		assert.Equal(t, "pricing_02_051", docs[1].ChunkID)
		// Rule names sorted alphabetically
		assert.Equal(t, "rule_cancellation_rules", docs[2].ChunkID)
		assert.Equal(t, "rule_transport_rules", docs[3].ChunkID)
		assert.Equal(t, "guidance_0", docs[4].ChunkID)
		assert.Equal(t, "guidance_1", docs[5].ChunkID)
		assert.Equal(t, "guidance_2", docs[6].ChunkID)
	})

	t.Run("lookup by chunk id", func(t *testing.T) {
		doc := c.Document("rule_transport_rules")
		require.NotNil(t, doc)
		assert.Equal(t, core.SourceTypeRule, doc.SourceType)

		assert.Nil(t, c.Document("pricing_99_999"))
	})

	t.Run("typed lookups", func(t *testing.T) {
		item := c.SupportItem("01_001")
		require.NotNil(t, item)
		assert.Equal(t, 193.99, item.PriceLimits["NSW"].Price)

		rule := c.Rule("cancellation_rules")
		require.NotNil(t, rule)

		section := c.Section(0)
		require.NotNil(t, section)
		assert.Contains(t, section.Text, "pricing arrangements")
	})
}

func TestBuild_PricingDocumentContent(t *testing.T) {
	builder := NewBuilder()
	c := builder.Build(testItems(), nil, "")

	doc := c.Document("pricing_01_001")
	require.NotNil(t, doc)

	assert.Contains(t, doc.Content, "Support Item: Assessment Recommendation Therapy - Occupational Therapist")
	assert.Contains(t, doc.Content, "Support Number: 01_001")
	assert.Contains(t, doc.Content, "Category: Capacity Building - Improved Daily Living")
	assert.Contains(t, doc.Content, "Registration Group: Therapeutic Supports")
	assert.Contains(t, doc.Content, "Unit of Measure: Hour")
	assert.Contains(t, doc.Content, "Pricing by State:")
	assert.Contains(t, doc.Content, "- NSW: $193.99 per Hour")
	assert.Contains(t, doc.Content, "- NT: $205.63 per Hour")
	assert.Contains(t, doc.Content, "Note: Price is set, no quote required.")

	// States render in canonical order
	nswIdx := strings.Index(doc.Content, "- NSW:")
	ntIdx := strings.Index(doc.Content, "- NT:")
	assert.Less(t, nswIdx, ntIdx)

	// No line for states without a published price
	assert.NotContains(t, doc.Content, "- QLD:")
}

func TestBuild_QuoteRequired(t *testing.T) {
	builder := NewBuilder()
	c := builder.Build(testItems(), nil, "")

	doc := c.Document("pricing_02_051")
	require.NotNil(t, doc)

	assert.Contains(t, doc.Content, "Note: Quote required before claiming this support.")
	// No price limits, so no pricing block at all
	assert.NotContains(t, doc.Content, "Pricing by State:")
}

func TestBuild_RuleDocumentContent(t *testing.T) {
	builder := NewBuilder()
	c := builder.Build(nil, testRules(), "")

	doc := c.Document("rule_transport_rules")
	require.NotNil(t, doc)

	assert.Contains(t, doc.Content, "Claiming Rule: Transport Rules")
	assert.Contains(t, doc.Content, "Rule Details:")
	assert.Contains(t, doc.Content, "max_claims: 1")
}

func TestBuild_SkipsInvalidRecords(t *testing.T) {
	items := []*core.SupportItem{
		{Number: "01_001", Name: "Valid"},
		{Name: "No number"},
		nil,
	}
	rules := map[string]any{
		"valid_rule": "content",
		"":           "nameless",
	}

	builder := NewBuilder()
	c := builder.Build(items, rules, "")

	assert.Equal(t, 2, c.Len())
	assert.NotNil(t, c.SupportItem("01_001"))
	assert.NotNil(t, c.Rule("valid_rule"))
}

func TestBuild_Fingerprint(t *testing.T) {
	builder := NewBuilder()

	c1 := builder.Build(testItems(), testRules(), testGuidance)
	c2 := builder.Build(testItems(), testRules(), testGuidance)

	// Rebuilding from identical input yields the same fingerprint even
	// though rule maps have no inherent order
	assert.Equal(t, c1.Fingerprint(), c2.Fingerprint())

	changed := testItems()
	changed[0].PriceLimits["NSW"] = core.PriceLimit{Price: 200.00}
	c3 := builder.Build(changed, testRules(), testGuidance)
	assert.NotEqual(t, c1.Fingerprint(), c3.Fingerprint())
}

func TestSplitGuidance(t *testing.T) {
	t.Run("preamble and sections", func(t *testing.T) {
		sections := SplitGuidance(testGuidance)
		require.Len(t, sections, 3)

		assert.Equal(t, 0, sections[0].Index)
		assert.Contains(t, sections[0].Text, "This guide explains")

		assert.Equal(t, 1, sections[1].Index)
		assert.Equal(t, "Claiming for Supports", sections[1].Title)

		assert.Equal(t, 2, sections[2].Index)
		assert.Equal(t, "Transport Guidance", sections[2].Title)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, SplitGuidance(""))
		assert.Empty(t, SplitGuidance("   \n\n  "))
	})

	t.Run("no headings is one section", func(t *testing.T) {
		sections := SplitGuidance("Just a plain paragraph.")
		require.Len(t, sections, 1)
		assert.Equal(t, 0, sections[0].Index)
	})

	t.Run("empty preamble keeps section indexes stable", func(t *testing.T) {
		sections := SplitGuidance("\n## Real Section\n\nBody text.")
		require.Len(t, sections, 1)
		assert.Equal(t, 1, sections[0].Index)
		assert.Equal(t, "Real Section", sections[0].Title)
	})

	t.Run("long title truncated", func(t *testing.T) {
		long := strings.Repeat("x", 150)
		sections := SplitGuidance("\n## " + long + "\ncontent")
		require.Len(t, sections, 1)
		assert.Len(t, sections[0].Title, 100)
	})

	t.Run("truncation never splits a rune", func(t *testing.T) {
		// "é" is two bytes; byte 100 lands inside it, so the cut must
		// back up to byte 99.
		long := strings.Repeat("x", 99) + strings.Repeat("é", 30)
		sections := SplitGuidance("\n## " + long + "\ncontent")
		require.Len(t, sections, 1)
		assert.True(t, utf8.ValidString(sections[0].Title))
		assert.Len(t, sections[0].Title, 99)
	})
}

func TestHumanizeRuleName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"transport_rules", "Transport Rules"},
		{"cancellation", "Cancellation"},
		{"short_notice_cancellations", "Short Notice Cancellations"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanizeRuleName(tt.in), "input %q", tt.in)
	}
}

func TestRenderRuleYAML(t *testing.T) {
	out := RenderRuleYAML(map[string]any{"b": 2, "a": 1})

	// Sorted key order makes rendering deterministic
	aIdx := strings.Index(out, "a: 1")
	bIdx := strings.Index(out, "b: 2")
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, bIdx, 0)
	assert.Less(t, aIdx, bIdx)
}
