package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/papl/core"
	"gopkg.in/yaml.v3"
)

// Wire formats of the converted PAPL artifacts. These mirror the converter
// output, which is produced outside this module.

type priceGuideJSON struct {
	SupportItems []supportItemJSON `json:"support_items"`
}

type supportItemJSON struct {
	Number            string                    `json:"support_item_number"`
	Name              string                    `json:"support_item_name"`
	Category          string                    `json:"support_category"`
	RegistrationGroup string                    `json:"registration_group"`
	Unit              string                    `json:"unit"`
	QuoteRequired     bool                      `json:"quote_required"`
	PriceLimits       map[string]priceLimitJSON `json:"price_limits"`
}

type priceLimitJSON struct {
	Price float64 `json:"price"`
}

type rulesYAML struct {
	ClaimingRules map[string]any `yaml:"claiming_rules"`
}

// LoadPricing reads a converted price guide JSON file and returns its
// support items.
func LoadPricing(path string) ([]*core.SupportItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pricing file: %w", err)
	}

	var guide priceGuideJSON
	if err := json.Unmarshal(data, &guide); err != nil {
		return nil, fmt.Errorf("parsing pricing file %s: %w", path, err)
	}

	items := make([]*core.SupportItem, 0, len(guide.SupportItems))
	for _, raw := range guide.SupportItems {
		item := &core.SupportItem{
			Number:            raw.Number,
			Name:              raw.Name,
			Category:          raw.Category,
			RegistrationGroup: raw.RegistrationGroup,
			Unit:              raw.Unit,
			QuoteRequired:     raw.QuoteRequired,
		}
		if len(raw.PriceLimits) > 0 {
			item.PriceLimits = make(map[string]core.PriceLimit, len(raw.PriceLimits))
			for state, limit := range raw.PriceLimits {
				item.PriceLimits[state] = core.PriceLimit{Price: limit.Price}
			}
		}
		items = append(items, item)
	}

	return items, nil
}

// LoadRules reads a converted claiming rules YAML file and returns the
// rule name to rule structure mapping.
func LoadRules(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var doc rulesYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	if doc.ClaimingRules == nil {
		return map[string]any{}, nil
	}
	return doc.ClaimingRules, nil
}

// LoadGuidance reads the guidance markdown blob.
func LoadGuidance(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading guidance file: %w", err)
	}
	return string(data), nil
}
