package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceType identifies which corpus a document was built from.
type SourceType int

const (
	// SourceTypePricing marks documents built from support item pricing records.
	SourceTypePricing SourceType = iota + 1
	// SourceTypeRule marks documents built from claiming rules.
	SourceTypeRule
	// SourceTypeGuidance marks documents built from guidance text sections.
	SourceTypeGuidance
)

// String returns the lowercase name used in chunk ids and prompt labels.
func (s SourceType) String() string {
	switch s {
	case SourceTypePricing:
		return "pricing"
	case SourceTypeRule:
		return "rule"
	case SourceTypeGuidance:
		return "guidance"
	default:
		return "unknown"
	}
}

// States lists the state codes used as price limit keys, in canonical order.
var States = []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "NT", "ACT"}

// PriceLimit is the price cap for a support item in one state.
type PriceLimit struct {
	Price float64
}

// SupportItem is one pricing record from the converted price guide.
type SupportItem struct {
	Number            string
	Name              string
	Category          string
	RegistrationGroup string
	Unit              string
	QuoteRequired     bool
	PriceLimits       map[string]PriceLimit // keyed by state code
}

// ClaimingRule is one named claiming rule with its raw structure as
// decoded from YAML. Content may be a mapping, list, or scalar.
type ClaimingRule struct {
	Name    string
	Content any
}

// GuidanceSection is one heading-delimited segment of the guidance text.
// Index 0 is the preamble before the first heading, when present.
type GuidanceSection struct {
	Index int
	Title string
	Text  string
}

// Document is one retrievable chunk of corpus content.
// Exactly one of Item, Rule, or Section is set, matching SourceType.
// Documents are immutable after the corpus build except for Vector,
// which is attached when the corpus is embedded.
type Document struct {
	ChunkID    string
	SourceType SourceType
	Content    string
	Vector     []float32

	Item    *SupportItem
	Rule    *ClaimingRule
	Section *GuidanceSection
}

// Key returns the document's natural key within its source type:
// item number, rule name, or guidance section index.
func (d *Document) Key() string {
	switch d.SourceType {
	case SourceTypePricing:
		if d.Item != nil {
			return d.Item.Number
		}
	case SourceTypeRule:
		if d.Rule != nil {
			return d.Rule.Name
		}
	case SourceTypeGuidance:
		if d.Section != nil {
			return strconv.Itoa(d.Section.Index)
		}
	}
	return ""
}

// SearchResult is one ranked hit from the lexical search engine.
type SearchResult struct {
	SourceType  SourceType
	Score       float64
	Title       string
	Content     string
	MatchReason string
	Document    *Document
}

// ConversationTurn is one recorded question/answer exchange,
// with the chunk ids of the documents cited in the answer.
type ConversationTurn struct {
	Id        ID
	Query     string
	Answer    string
	Sources   []string
	CreatedAt time.Time
}
