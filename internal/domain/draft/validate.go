package draft

import (
	"fmt"
	"strings"

	"order-composer/internal/domain/entities"
)

// Violation names a product whose required option group has no selection,
// or a selection that matches none of the group's choices.
// GroupName is empty when the product itself is missing from the catalog.
type Violation struct {
	ProductID string `json:"productId"`
	GroupName string `json:"groupName,omitempty"`
}

type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.GroupName == "" {
			parts[i] = fmt.Sprintf("product %s is not in the catalog", v.ProductID)
		} else {
			parts[i] = fmt.Sprintf("product %s requires a choice for %q", v.ProductID, v.GroupName)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func resolvesRequired(g entities.OptionGroup, sel *entities.Selection) bool {
	pick, ok := sel.RequiredChoice(g.Name)
	if !ok {
		return false
	}
	_, ok = g.Resolve(pick.ChoiceKey)
	return ok
}

// Validate checks every selection against its product and reports all
// violations at once. It performs no I/O.
func Validate(d *Draft, products map[string]*entities.Product) error {
	if d.Len() == 0 {
		return ErrEmptyDraft
	}

	var violations []Violation
	for pair := d.selections.Oldest(); pair != nil; pair = pair.Next() {
		product, ok := products[pair.Key]
		if !ok || product == nil {
			violations = append(violations, Violation{ProductID: pair.Key})
			continue
		}
		for _, g := range product.RequiredGroups() {
			if !resolvesRequired(g, pair.Value) {
				violations = append(violations, Violation{ProductID: pair.Key, GroupName: g.Name})
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
