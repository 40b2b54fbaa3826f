// Package seed loads catalog fixtures from YAML for the in-memory store and
// the quote command.
package seed

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"order-composer/internal/domain/entities"
)

type Catalog struct {
	Products   []entities.Product  `yaml:"products"`
	Categories []entities.Category `yaml:"categories"`
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &c, nil
}

// Validate rejects catalogs the pricing engine would silently misprice:
// duplicate product ids, duplicate variety names and empty required groups.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Products))

	for i, p := range c.Products {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("product %d has no id", i))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate product id %q", p.ID))
		}
		seen[p.ID] = true

		varieties := make(map[string]bool, len(p.Varieties))
		for _, v := range p.Varieties {
			if varieties[v.Name] {
				errs = append(errs, fmt.Errorf("product %q: duplicate variety %q", p.ID, v.Name))
			}
			varieties[v.Name] = true
		}

		for _, g := range p.OptionGroups {
			if g.Required && len(g.Choices) == 0 {
				errs = append(errs, fmt.Errorf("product %q: required option %q has no choices", p.ID, g.Name))
			}
		}
	}

	return errors.Join(errs...)
}

// Product looks a product up by id.
func (c *Catalog) Product(id string) (*entities.Product, bool) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], true
		}
	}
	return nil, false
}
