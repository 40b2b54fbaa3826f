package draft

import (
	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/pricing"
)

type Preview struct {
	Lines []pricing.Breakdown `json:"lines"`
	Total int64               `json:"total"`
	// Unpriced lists products of the draft that are missing from the catalog.
	Unpriced []string `json:"unpriced,omitempty"`
}

// Preview folds the engine over every selection of the draft.
func (d *Draft) Preview(engine *pricing.Engine, products map[string]*entities.Product) Preview {
	p := Preview{Lines: make([]pricing.Breakdown, 0, d.selections.Len())}
	for pair := d.selections.Oldest(); pair != nil; pair = pair.Next() {
		product, ok := products[pair.Key]
		if !ok || product == nil {
			p.Unpriced = append(p.Unpriced, pair.Key)
			continue
		}
		p.Lines = append(p.Lines, engine.Compute(product, pair.Value))
	}
	p.Total = pricing.Sum(p.Lines)
	return p
}
