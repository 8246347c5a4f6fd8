// Package catalog provides the static product/size price table the
// storefront sells from. The table is loaded once at startup and is
// read-only afterwards; lookups are pure functions of that configuration.
package catalog

import (
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is the sentinel returned for unknown product or size
// identifiers. The UI may query speculatively, so unknown ids are an
// expected condition, never a panic.
var ErrNotFound = errors.New("price not found")

// Product is one catalog entry: a display name and a price per size.
type Product struct {
	ID     string
	Name   string
	Prices map[string]decimal.Decimal
}

// Catalog is the immutable product/size price table.
type Catalog struct {
	products  map[string]Product
	order     []string
	sizes     map[string]string
	sizeOrder []string
}

// file mirrors the YAML layout. Prices are kept as strings in the file so
// they parse through decimal.NewFromString without any float step.
type file struct {
	Sizes []struct {
		ID    string `yaml:"id"`
		Label string `yaml:"label"`
	} `yaml:"sizes"`
	Products []struct {
		ID     string            `yaml:"id"`
		Name   string            `yaml:"name"`
		Prices map[string]string `yaml:"prices"`
	} `yaml:"products"`
}

// Load parses a catalog from YAML. Every product must carry a price for
// every declared size, and prices must be non-negative.
func Load(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	if len(f.Sizes) == 0 {
		return nil, errors.New("catalog declares no sizes")
	}
	if len(f.Products) == 0 {
		return nil, errors.New("catalog declares no products")
	}

	c := &Catalog{
		products: make(map[string]Product, len(f.Products)),
		sizes:    make(map[string]string, len(f.Sizes)),
	}
	for _, s := range f.Sizes {
		if s.ID == "" || s.Label == "" {
			return nil, errors.New("size entry missing id or label")
		}
		if _, dup := c.sizes[s.ID]; dup {
			return nil, errors.Errorf("duplicate size %q", s.ID)
		}
		c.sizes[s.ID] = s.Label
		c.sizeOrder = append(c.sizeOrder, s.ID)
	}

	for _, p := range f.Products {
		if p.ID == "" || p.Name == "" {
			return nil, errors.New("product entry missing id or name")
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, errors.Errorf("duplicate product %q", p.ID)
		}

		prices := make(map[string]decimal.Decimal, len(p.Prices))
		for _, sizeID := range c.sizeOrder {
			raw, ok := p.Prices[sizeID]
			if !ok {
				return nil, errors.Errorf("product %q has no price for size %q", p.ID, sizeID)
			}
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, errors.Wrapf(err, "product %q size %q", p.ID, sizeID)
			}
			if price.IsNegative() {
				return nil, errors.Errorf("product %q size %q has negative price", p.ID, sizeID)
			}
			prices[sizeID] = price
		}

		c.products[p.ID] = Product{ID: p.ID, Name: p.Name, Prices: prices}
		c.order = append(c.order, p.ID)
	}

	return c, nil
}

// LoadFile loads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog file")
	}
	return Load(data)
}

// PriceFor returns the unit price for the given product and size, or
// ErrNotFound when either identifier is unknown.
func (c *Catalog) PriceFor(productID, sizeID string) (decimal.Decimal, error) {
	p, ok := c.products[productID]
	if !ok {
		return decimal.Decimal{}, ErrNotFound
	}
	price, ok := p.Prices[sizeID]
	if !ok {
		return decimal.Decimal{}, ErrNotFound
	}
	return price, nil
}

// DisplayName returns the display name of a product, or ErrNotFound.
func (c *Catalog) DisplayName(productID string) (string, error) {
	p, ok := c.products[productID]
	if !ok {
		return "", ErrNotFound
	}
	return p.Name, nil
}

// LabelFor maps a size identifier to its display label ("small" becomes
// "Small"). Unknown sizes fall back to capitalizing the identifier so a
// speculative lookup still renders something sensible.
func (c *Catalog) LabelFor(sizeID string) string {
	if label, ok := c.sizes[sizeID]; ok {
		return label
	}
	if sizeID == "" {
		return ""
	}
	return strings.ToUpper(sizeID[:1]) + sizeID[1:]
}

// Sizes returns the declared size identifiers in declaration order.
func (c *Catalog) Sizes() []string {
	out := make([]string, len(c.sizeOrder))
	copy(out, c.sizeOrder)
	return out
}

// Products returns the catalog entries in declaration order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}
