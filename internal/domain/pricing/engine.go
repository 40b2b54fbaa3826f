// Package pricing computes line prices for configurable products.
//
// The engine is pure: it performs no I/O and never fails on missing or
// unmatched data, which degrades to a zero contribution. It is cheap enough
// to run on every draft mutation.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"order-composer/internal/domain/entities"
)

// DefaultMarkup leaves base prices unchanged.
const DefaultMarkup = 1.0

// Breakdown is the result of pricing one selection.
type Breakdown struct {
	ProductID          string                 `json:"productId"`
	BasePriceComponent decimal.Decimal        `json:"basePriceComponent"`
	VarietyDelta       decimal.Decimal        `json:"varietyDelta"`
	OptionsExtra       decimal.Decimal        `json:"optionsExtra"`
	Quantity           int                    `json:"quantity"`
	LineAmount         int64                  `json:"lineAmount"`
	NormalizedOptions  []entities.OrderOption `json:"orderoptions"`
}

// Engine prices selections. Preview and submission must share one Engine so
// that both apply the same markup.
type Engine struct {
	markup decimal.Decimal
}

// NewEngine returns an engine applying markup to the base price component.
// A non-positive markup is treated as DefaultMarkup.
func NewEngine(markup float64) *Engine {
	if markup <= 0 {
		markup = DefaultMarkup
	}
	return &Engine{markup: decimal.NewFromFloat(markup)}
}

// Markup is the factor applied to base prices.
func (e *Engine) Markup() decimal.Decimal {
	return e.markup
}

// Compute prices sel against product. The caller guarantees product is not nil.
func (e *Engine) Compute(product *entities.Product, sel *entities.Selection) Breakdown {
	qty := sel.EffectiveQuantity()

	b := Breakdown{
		ProductID:          product.ID,
		BasePriceComponent: e.basePrice(product),
		VarietyDelta:       decimal.Zero,
		OptionsExtra:       decimal.Zero,
		Quantity:           qty,
		NormalizedOptions:  []entities.OrderOption{},
	}

	if sel.VarietyName != "" {
		if v, ok := product.Variety(sel.VarietyName); ok {
			b.VarietyDelta = decimal.NewFromFloat(v.PriceDifference)
		}
	}

	for _, g := range product.OptionGroups {
		if g.Required {
			e.addRequired(&b, g, sel)
		} else {
			e.addOptional(&b, g, sel)
		}
	}

	line := b.BasePriceComponent.Add(b.VarietyDelta).Mul(decimal.NewFromInt(int64(qty))).Add(b.OptionsExtra)
	if line.IsNegative() {
		line = decimal.Zero
	}
	b.LineAmount = line.Round(0).IntPart()
	return b
}

func (e *Engine) basePrice(product *entities.Product) decimal.Decimal {
	price := product.Price
	if product.DiscountPrice != nil {
		price = *product.DiscountPrice
	}
	return decimal.NewFromFloat(price).Mul(e.markup)
}

func (e *Engine) addRequired(b *Breakdown, g entities.OptionGroup, sel *entities.Selection) {
	pick, ok := sel.RequiredChoice(g.Name)
	if !ok {
		return
	}
	choice, ok := g.Resolve(pick.ChoiceKey)
	if !ok {
		return
	}
	b.OptionsExtra = b.OptionsExtra.Add(cost(choice, pick.Quantity))
	b.NormalizedOptions = append(b.NormalizedOptions, entities.OrderOption{
		Name:    g.Name,
		Options: []entities.OrderOptionValue{{OptionName: choice.Name, Quantity: pick.Quantity}},
	})
}

// addOptional emits one normalized entry per selected choice, in the order
// the choices appear in the group. Entries of the same group are kept
// separate.
func (e *Engine) addOptional(b *Breakdown, g entities.OptionGroup, sel *entities.Selection) {
	type pick struct {
		key    string
		choice entities.ResolvedChoice
		qty    int
	}

	var picks []pick
	for key, qty := range sel.Optional[g.Name] {
		if qty <= 0 {
			continue
		}
		choice, ok := g.Resolve(key)
		if !ok {
			continue
		}
		picks = append(picks, pick{key: key, choice: choice, qty: qty})
	}
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].choice.Index != picks[j].choice.Index {
			return picks[i].choice.Index < picks[j].choice.Index
		}
		return picks[i].key < picks[j].key
	})

	for _, p := range picks {
		b.OptionsExtra = b.OptionsExtra.Add(cost(p.choice, p.qty))
		b.NormalizedOptions = append(b.NormalizedOptions, entities.OrderOption{
			Name:    g.Name,
			Options: []entities.OrderOptionValue{{OptionName: p.choice.Name, Quantity: p.qty}},
		})
	}
}

func cost(choice entities.ResolvedChoice, qty int) decimal.Decimal {
	return decimal.NewFromFloat(choice.Cost).Mul(decimal.NewFromInt(int64(qty)))
}

// Sum adds up the line amounts of breakdowns.
func Sum(lines []Breakdown) int64 {
	var total int64
	for _, l := range lines {
		total += l.LineAmount
	}
	return total
}
