package entities

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type choiceKind int

const (
	kindLabel choiceKind = iota
	kindRich
)

// RichChoice is the object form of a choice.
type RichChoice struct {
	ID             string  `json:"id" yaml:"id" bson:"id"`
	Name           string  `json:"name" yaml:"name" bson:"name"`
	AdditionalCost float64 `json:"additionalCost" yaml:"additionalCost" bson:"additionalCost"`
}

// Choice is either a bare label or a RichChoice. Stores hold both shapes in
// the same array, so Choice decodes from a string or an object.
type Choice struct {
	kind  choiceKind
	label string
	rich  RichChoice
}

func NewLabelChoice(label string) Choice {
	return Choice{kind: kindLabel, label: label}
}

func NewRichChoice(id, name string, additionalCost float64) Choice {
	return Choice{kind: kindRich, rich: RichChoice{ID: id, Name: name, AdditionalCost: additionalCost}}
}

// Label returns the bare label and whether c is one.
func (c Choice) Label() (string, bool) {
	return c.label, c.kind == kindLabel
}

// Rich returns the object form and whether c is one.
func (c Choice) Rich() (RichChoice, bool) {
	return c.rich, c.kind == kindRich
}

// Key is the value a selection uses to refer to this choice.
func (c Choice) Key() string {
	if c.kind == kindRich {
		return c.rich.ID
	}
	return c.label
}

// DisplayName is the name written into order options.
func (c Choice) DisplayName() string {
	if c.kind == kindRich {
		return c.rich.Name
	}
	return c.label
}

func (c Choice) MarshalJSON() ([]byte, error) {
	if c.kind == kindRich {
		return json.Marshal(c.rich)
	}
	return json.Marshal(c.label)
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*c = NewLabelChoice(label)
		return nil
	}
	var rich RichChoice
	if err := json.Unmarshal(data, &rich); err != nil {
		return fmt.Errorf("choice must be a string or an object: %w", err)
	}
	*c = Choice{kind: kindRich, rich: rich}
	return nil
}

func (c Choice) MarshalYAML() (interface{}, error) {
	if c.kind == kindRich {
		return c.rich, nil
	}
	return c.label, nil
}

func (c *Choice) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = NewLabelChoice(value.Value)
		return nil
	case yaml.MappingNode:
		var rich RichChoice
		if err := value.Decode(&rich); err != nil {
			return err
		}
		*c = Choice{kind: kindRich, rich: rich}
		return nil
	default:
		return fmt.Errorf("line %d: choice must be a string or a mapping", value.Line)
	}
}
