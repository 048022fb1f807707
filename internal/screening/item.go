// Package screening implements the Algorithmic Harm Screening Scale (AHSS).
//
// The package owns three pieces that build on each other:
//   - the item catalog (static instrument definition)
//   - the scoring engine (responses -> total and domain subscales)
//   - the interpretation engine (scores -> risk level, recommendations,
//     intervention window)
//
// Everything here is a pure function of its inputs and the catalog.
// Rendering, persistence and transports live in other packages.
package screening

import (
	"fmt"
	"sort"
)

// --- Domain enum ---

// Domain is the thematic section an item belongs to.
type Domain string

const (
	DomainExposure      Domain = "exposure"
	DomainOutcomes      Domain = "outcomes"
	DomainPsychological Domain = "psychological"
	DomainTemporal      Domain = "temporal"
)

// validDomains is the set of allowed domains.
var validDomains = map[Domain]bool{
	DomainExposure:      true,
	DomainOutcomes:      true,
	DomainPsychological: true,
	DomainTemporal:      true,
}

// Domains returns the four domains in section order (A-D).
func Domains() []Domain {
	return []Domain{DomainExposure, DomainOutcomes, DomainPsychological, DomainTemporal}
}

// ValidateDomain returns an error if the domain is not recognized.
func ValidateDomain(d Domain) error {
	if !validDomains[d] {
		return fmt.Errorf("invalid domain %q: must be one of: exposure, outcomes, psychological, temporal", d)
	}
	return nil
}

// --- Item ---

// Item is a single screening question.
// Weights[i] is the score contribution of choosing Options[i]. Weights are
// not required to be monotonic.
type Item struct {
	Number       int       `json:"number" yaml:"number"`
	Domain       Domain    `json:"domain" yaml:"domain"`
	Question     string    `json:"question" yaml:"question"`
	Options      []string  `json:"response_options" yaml:"response_options"`
	Weights      []float64 `json:"weights" yaml:"weights"`
	ClinicalNote string    `json:"clinical_note" yaml:"clinical_note"`
}

// MaxWeight returns the largest weight of the item, or 0 if it has none.
func (it Item) MaxWeight() float64 {
	max := 0.0
	for _, w := range it.Weights {
		if w > max {
			max = w
		}
	}
	return max
}

// --- Catalog ---

// Catalog is an ordered list of items. Order is by item number.
type Catalog struct {
	Items []Item `json:"items" yaml:"items"`
}

// Item looks up an item by number.
func (c Catalog) Item(number int) (Item, bool) {
	for _, it := range c.Items {
		if it.Number == number {
			return it, true
		}
	}
	return Item{}, false
}

// ByDomain returns the items of one domain in catalog order.
func (c Catalog) ByDomain(d Domain) []Item {
	var out []Item
	for _, it := range c.Items {
		if it.Domain == d {
			out = append(out, it)
		}
	}
	return out
}

// MaxTotal is the highest total score the catalog can produce.
func (c Catalog) MaxTotal() float64 {
	total := 0.0
	for _, it := range c.Items {
		total += it.MaxWeight()
	}
	return total
}

// MaxSubscale is the highest subscale score for a domain.
func (c Catalog) MaxSubscale(d Domain) float64 {
	total := 0.0
	for _, it := range c.ByDomain(d) {
		total += it.MaxWeight()
	}
	return total
}

// Validate checks the structural invariants of the catalog:
// unique positive item numbers, known domains, at least one option,
// and one weight per option.
func (c Catalog) Validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("catalog has no items")
	}

	seen := make(map[int]bool, len(c.Items))
	for _, it := range c.Items {
		if it.Number < 1 {
			return fmt.Errorf("item %d: number must be >= 1", it.Number)
		}
		if seen[it.Number] {
			return fmt.Errorf("item %d: duplicate item number", it.Number)
		}
		seen[it.Number] = true

		if err := ValidateDomain(it.Domain); err != nil {
			return fmt.Errorf("item %d: %w", it.Number, err)
		}
		if len(it.Options) == 0 {
			return fmt.Errorf("item %d: no response options", it.Number)
		}
		if len(it.Weights) != len(it.Options) {
			return fmt.Errorf("item %d: %d weights for %d response options",
				it.Number, len(it.Weights), len(it.Options))
		}
	}
	return nil
}

// sortItems orders items by number in place.
func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })
}
