package corpus

import (
	"strings"

	"github.com/poiesic/papl/core"
)

// Corpus is the full set of retrievable document chunks built from pricing,
// rule, and guidance sources, with typed lookup by natural key.
//
// A Corpus is immutable after Build except for embedding vectors attached
// to its documents. If the underlying source data changes, the corpus is
// discarded and rebuilt wholesale; there is no incremental update.
type Corpus struct {
	documents []*core.Document
	byID      map[string]*core.Document
	items     map[string]*core.SupportItem
	rules     map[string]*core.ClaimingRule
	sections  map[int]*core.GuidanceSection
}

// Documents returns all documents in build order: pricing, then rules,
// then guidance. Callers must not mutate the returned slice.
func (c *Corpus) Documents() []*core.Document {
	return c.documents
}

// Len returns the total number of documents.
func (c *Corpus) Len() int {
	return len(c.documents)
}

// Document returns the document with the given chunk id, or nil.
func (c *Corpus) Document(chunkID string) *core.Document {
	return c.byID[chunkID]
}

// SupportItem returns the pricing record with the given item number,
// or nil if the corpus has no such item.
func (c *Corpus) SupportItem(number string) *core.SupportItem {
	return c.items[number]
}

// Rule returns the claiming rule with the given name, or nil.
func (c *Corpus) Rule(name string) *core.ClaimingRule {
	return c.rules[name]
}

// Section returns the guidance section with the given index, or nil.
func (c *Corpus) Section(index int) *core.GuidanceSection {
	return c.sections[index]
}

// Fingerprint returns a content-derived identifier for this corpus.
// Two corpora built from identical source data share a fingerprint, so
// callers can detect when source data has changed and a rebuild is due.
func (c *Corpus) Fingerprint() core.ID {
	var sb strings.Builder
	for _, doc := range c.documents {
		sb.WriteString(doc.ChunkID)
		sb.WriteByte(0)
		sb.WriteString(doc.Content)
		sb.WriteByte(0)
	}
	return core.IDFromContent(sb.String())
}
