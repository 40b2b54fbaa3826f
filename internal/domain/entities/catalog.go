package entities

// Product is a catalog entry as fetched from the catalog store. Products are
// treated as immutable once loaded into a composing session.
type Product struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Price         float64       `json:"price" yaml:"price"`
	DiscountPrice *float64      `json:"discountPrice,omitempty" yaml:"discountPrice,omitempty"`
	StoreID       string        `json:"store" yaml:"store"`
	Category      string        `json:"category,omitempty" yaml:"category,omitempty"`
	Varieties     []Variety     `json:"varieties,omitempty" yaml:"varieties,omitempty"`
	OptionGroups  []OptionGroup `json:"options,omitempty" yaml:"options,omitempty"`
}

// Variety is a mutually exclusive sub-choice that shifts the unit price.
type Variety struct {
	Name            string  `json:"name" yaml:"name"`
	PriceDifference float64 `json:"priceDifference" yaml:"priceDifference"`
}

// OptionGroup is a named set of add-on choices. Required groups take exactly
// one choice, optional groups take any number of choices with a quantity each.
type OptionGroup struct {
	Name     string   `json:"name" yaml:"name"`
	Required bool     `json:"required" yaml:"required"`
	Choices  []Choice `json:"choices" yaml:"choices"`
	// ExtraPrices holds the cost of bare label choices, keyed by label.
	ExtraPrices map[string]float64 `json:"extraPrices,omitempty" yaml:"extraPrices,omitempty"`
}

// Category is a catalog section with its subcategory names.
type Category struct {
	Name        string   `json:"name" yaml:"name"`
	Subcategory []string `json:"subcategory" yaml:"subcategory"`
}

// Variety returns the variety with exactly the given name.
func (p *Product) Variety(name string) (Variety, bool) {
	for _, v := range p.Varieties {
		if v.Name == name {
			return v, true
		}
	}
	return Variety{}, false
}

// RequiredGroups returns the groups that need a selection before submission.
func (p *Product) RequiredGroups() []OptionGroup {
	var groups []OptionGroup
	for _, g := range p.OptionGroups {
		if g.Required {
			groups = append(groups, g)
		}
	}
	return groups
}

// ResolvedChoice is a choice key resolved against its group. Index is the
// position of the choice in the group.
type ResolvedChoice struct {
	Index int
	Name  string
	Cost  float64
}

// Resolve maps a selection key onto a choice of the group. A key is matched
// against rich choice ids first, then against bare labels (costed through
// ExtraPrices) and finally against rich choice names.
func (g OptionGroup) Resolve(key string) (ResolvedChoice, bool) {
	if key == "" {
		return ResolvedChoice{}, false
	}
	for i, c := range g.Choices {
		if r, ok := c.Rich(); ok && r.ID == key {
			return g.resolved(i, r.AdditionalCost), true
		}
	}
	for i, c := range g.Choices {
		if label, ok := c.Label(); ok && label == key {
			return g.resolved(i, g.ExtraPrices[label]), true
		}
	}
	for i, c := range g.Choices {
		if r, ok := c.Rich(); ok && r.Name == key {
			return g.resolved(i, r.AdditionalCost), true
		}
	}
	return ResolvedChoice{}, false
}

func (g OptionGroup) resolved(i int, cost float64) ResolvedChoice {
	return ResolvedChoice{Index: i, Name: g.Choices[i].DisplayName(), Cost: cost}
}
