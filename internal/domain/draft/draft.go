// Package draft holds the single-owner, in-progress order a composing
// session mutates before submission.
package draft

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"order-composer/internal/domain/entities"
)

type State string

const (
	StateEmpty      State = "EMPTY"
	StateComposing  State = "COMPOSING"
	StateValidating State = "VALIDATING"
	StateSubmitting State = "SUBMITTING"
	StateSubmitted  State = "SUBMITTED"
	StateFailed     State = "FAILED"
)

var (
	ErrDraftLocked       = errors.New("draft cannot be modified in its current state")
	ErrProductNotInDraft = errors.New("product is not part of the draft")
	ErrInvalidTransition = errors.New("invalid draft state transition")
	ErrEmptyDraft        = errors.New("draft has no products")
)

// Draft is an order being composed. It is owned by exactly one session and
// is not safe for concurrent use.
type Draft struct {
	ID         string
	Customer   string
	Rider      string
	StoreID    string
	Location   entities.Location
	Payment    string
	Preference string

	state      State
	selections *orderedmap.OrderedMap[string, *entities.Selection]
}

func New(id, customer string) *Draft {
	return &Draft{
		ID:         id,
		Customer:   customer,
		state:      StateEmpty,
		selections: orderedmap.New[string, *entities.Selection](),
	}
}

func (d *Draft) State() State { return d.state }

func (d *Draft) Len() int { return d.selections.Len() }

func (d *Draft) mutable() error {
	if d.state != StateEmpty && d.state != StateComposing {
		return fmt.Errorf("%w: %s", ErrDraftLocked, d.state)
	}
	return nil
}

// AddProduct adds a product with quantity one. Adding a product that is
// already in the draft leaves its selection untouched.
func (d *Draft) AddProduct(productID string) error {
	if err := d.mutable(); err != nil {
		return err
	}
	if _, ok := d.selections.Get(productID); !ok {
		d.selections.Set(productID, entities.NewSelection(productID))
	}
	d.state = StateComposing
	return nil
}

func (d *Draft) RemoveProduct(productID string) error {
	if err := d.mutable(); err != nil {
		return err
	}
	if _, ok := d.selections.Delete(productID); !ok {
		return fmt.Errorf("%w: %s", ErrProductNotInDraft, productID)
	}
	if d.selections.Len() == 0 {
		d.state = StateEmpty
	}
	return nil
}

func (d *Draft) SetQuantity(productID string, quantity int) error {
	return d.update(productID, func(s *entities.Selection) { s.SetQuantity(quantity) })
}

func (d *Draft) SetVariety(productID, variety string) error {
	return d.update(productID, func(s *entities.Selection) { s.SetVariety(variety) })
}

func (d *Draft) ChooseRequired(productID, group, choiceKey string, quantity int) error {
	return d.update(productID, func(s *entities.Selection) { s.ChooseRequired(group, choiceKey, quantity) })
}

func (d *Draft) ClearRequired(productID, group string) error {
	return d.update(productID, func(s *entities.Selection) { s.ClearRequired(group) })
}

func (d *Draft) SetOptional(productID, group, choiceKey string, quantity int) error {
	return d.update(productID, func(s *entities.Selection) { s.SetOptional(group, choiceKey, quantity) })
}

func (d *Draft) ClearOptional(productID, group string) error {
	return d.update(productID, func(s *entities.Selection) { s.ClearOptional(group) })
}

func (d *Draft) update(productID string, fn func(*entities.Selection)) error {
	if err := d.mutable(); err != nil {
		return err
	}
	sel, ok := d.selections.Get(productID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotInDraft, productID)
	}
	fn(sel)
	return nil
}

// SetDelivery records where and how the order is delivered and paid.
func (d *Draft) SetDelivery(location entities.Location, payment, rider, preference string) error {
	if err := d.mutable(); err != nil {
		return err
	}
	d.Location = location
	d.Payment = payment
	d.Rider = rider
	d.Preference = preference
	return nil
}

// Selection returns a copy of the selection for productID.
func (d *Draft) Selection(productID string) (*entities.Selection, bool) {
	sel, ok := d.selections.Get(productID)
	if !ok {
		return nil, false
	}
	return sel.Clone(), true
}

// Selections returns copies of all selections in the order products were added.
func (d *Draft) Selections() []*entities.Selection {
	out := make([]*entities.Selection, 0, d.selections.Len())
	for pair := d.selections.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Clone())
	}
	return out
}

// ProductIDs returns the product ids in insertion order.
func (d *Draft) ProductIDs() []string {
	ids := make([]string, 0, d.selections.Len())
	for pair := d.selections.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}
