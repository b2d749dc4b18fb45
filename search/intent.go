package search

import "strings"

// IntentType is the classified purpose of a query, used to route it to
// the right sub-searches.
type IntentType int

const (
	// IntentGeneral is the fallthrough: search all sources.
	IntentGeneral IntentType = iota
	// IntentPricing targets pricing records only.
	IntentPricing
	// IntentClaiming targets claiming rules.
	IntentClaiming
	// IntentDefinition targets guidance sections.
	IntentDefinition
	// IntentBoth targets rules and guidance (eligibility questions).
	IntentBoth
)

// String returns the intent type name.
func (t IntentType) String() string {
	switch t {
	case IntentPricing:
		return "pricing"
	case IntentClaiming:
		return "claiming"
	case IntentDefinition:
		return "definition"
	case IntentBoth:
		return "both"
	default:
		return "general"
	}
}

// Focus values attached to classified intents.
const (
	FocusPrice       = "price"
	FocusRules       = "rules"
	FocusGuidance    = "guidance"
	FocusEligibility = "eligibility"
)

// ModifierKind distinguishes query modifier categories.
type ModifierKind int

const (
	// ModifierState is a state code extracted from the query.
	ModifierState ModifierKind = iota + 1
	// ModifierFramework selects the old or new pricing framework.
	ModifierFramework
)

// Modifier is a query-extracted filter that adjusts scoring but does not
// gate candidacy.
type Modifier struct {
	Kind  ModifierKind
	Value string
}

// Intent is the structured classification of a raw query.
type Intent struct {
	Type      IntentType
	Focus     string
	Modifiers []Modifier
}

// stateTable maps recognized state phrases to state codes, in canonical
// state order.
var stateTable = []struct {
	code    string
	phrases []string
}{
	{"NSW", []string{"in nsw", "in new south wales"}},
	{"VIC", []string{"in vic", "in victoria"}},
	{"QLD", []string{"in qld", "in queensland"}},
	{"SA", []string{"in sa", "in south australia"}},
	{"WA", []string{"in wa", "in western australia"}},
	{"TAS", []string{"in tas", "in tasmania"}},
	{"NT", []string{"in nt", "in northern territory"}},
	{"ACT", []string{"in act", "in australian capital territory"}},
}

var (
	pricingPhrases     = []string{"price", "cost", "how much", "$"}
	claimingPhrases    = []string{"can i claim", "how to claim", "claiming", "rules for"}
	definitionPhrases  = []string{"what is", "what are", "define", "explain"}
	eligibilityPhrases = []string{"can i", "am i eligible", "available"}
)

// ClassifyIntent derives a structured intent from a raw query using ordered
// heuristic rules; the first matching rule wins and unrecognized queries
// fall through to the general intent. Modifier extraction is independent of
// the type rules and additive. Never fails.
func ClassifyIntent(query string) Intent {
	lower := strings.ToLower(query)

	intent := Intent{Type: IntentGeneral}

	switch {
	case containsAny(lower, pricingPhrases):
		intent.Type = IntentPricing
		intent.Focus = FocusPrice
	case containsAny(lower, claimingPhrases):
		intent.Type = IntentClaiming
		intent.Focus = FocusRules
	case containsAny(lower, definitionPhrases):
		intent.Type = IntentDefinition
		intent.Focus = FocusGuidance
	case containsAny(lower, eligibilityPhrases):
		intent.Type = IntentBoth
		intent.Focus = FocusEligibility
	}

	for _, state := range stateTable {
		if containsAny(lower, state.phrases) {
			intent.Modifiers = append(intent.Modifiers, Modifier{Kind: ModifierState, Value: state.code})
		}
	}

	if strings.Contains(lower, "old framework") {
		intent.Modifiers = append(intent.Modifiers, Modifier{Kind: ModifierFramework, Value: "old"})
	} else if strings.Contains(lower, "new framework") {
		intent.Modifiers = append(intent.Modifiers, Modifier{Kind: ModifierFramework, Value: "new"})
	}

	return intent
}

// StateModifiers returns the state codes extracted from the query.
func (i Intent) StateModifiers() []string {
	var states []string
	for _, mod := range i.Modifiers {
		if mod.Kind == ModifierState {
			states = append(states, mod.Value)
		}
	}
	return states
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
