package entities

// RequiredPick is the single choice taken in a required group.
type RequiredPick struct {
	ChoiceKey string `json:"choice"`
	Quantity  int    `json:"quantity"`
}

// Selection is the per-product part of an order draft. Mutations coerce
// invalid quantities instead of failing, so a selection is always priceable.
type Selection struct {
	ProductID   string                    `json:"productId"`
	Quantity    int                       `json:"quantity"`
	VarietyName string                    `json:"variety,omitempty"`
	Required    map[string]RequiredPick   `json:"required,omitempty"`
	Optional    map[string]map[string]int `json:"optional,omitempty"`
}

func NewSelection(productID string) *Selection {
	return &Selection{
		ProductID: productID,
		Quantity:  1,
		Required:  make(map[string]RequiredPick),
		Optional:  make(map[string]map[string]int),
	}
}

// EffectiveQuantity is the product quantity used for pricing; anything
// below one counts as one.
func (s *Selection) EffectiveQuantity() int {
	if s.Quantity < 1 {
		return 1
	}
	return s.Quantity
}

func (s *Selection) SetQuantity(quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.Quantity = quantity
}

// SetVariety picks a variety by name. An empty name clears it.
func (s *Selection) SetVariety(name string) {
	s.VarietyName = name
}

func (s *Selection) ChooseRequired(group, choiceKey string, quantity int) {
	if choiceKey == "" {
		s.ClearRequired(group)
		return
	}
	if s.Required == nil {
		s.Required = make(map[string]RequiredPick)
	}
	if quantity < 1 {
		quantity = 1
	}
	s.Required[group] = RequiredPick{ChoiceKey: choiceKey, Quantity: quantity}
}

func (s *Selection) ClearRequired(group string) {
	delete(s.Required, group)
}

// RequiredChoice reports the pick for a required group, if one was made.
func (s *Selection) RequiredChoice(group string) (RequiredPick, bool) {
	pick, ok := s.Required[group]
	if !ok || pick.ChoiceKey == "" {
		return RequiredPick{}, false
	}
	if pick.Quantity < 1 {
		pick.Quantity = 1
	}
	return pick, true
}

// SetOptional sets the quantity of one choice in an optional group. A
// quantity of zero or less removes the choice.
func (s *Selection) SetOptional(group, choiceKey string, quantity int) {
	if quantity <= 0 {
		picks := s.Optional[group]
		delete(picks, choiceKey)
		if len(picks) == 0 {
			delete(s.Optional, group)
		}
		return
	}
	if s.Optional == nil {
		s.Optional = make(map[string]map[string]int)
	}
	picks, ok := s.Optional[group]
	if !ok {
		picks = make(map[string]int)
		s.Optional[group] = picks
	}
	picks[choiceKey] = quantity
}

func (s *Selection) ClearOptional(group string) {
	delete(s.Optional, group)
}

// Clone returns a deep copy.
func (s *Selection) Clone() *Selection {
	c := &Selection{
		ProductID:   s.ProductID,
		Quantity:    s.Quantity,
		VarietyName: s.VarietyName,
		Required:    make(map[string]RequiredPick, len(s.Required)),
		Optional:    make(map[string]map[string]int, len(s.Optional)),
	}
	for k, v := range s.Required {
		c.Required[k] = v
	}
	for group, picks := range s.Optional {
		cp := make(map[string]int, len(picks))
		for k, v := range picks {
			cp[k] = v
		}
		c.Optional[group] = cp
	}
	return c
}
