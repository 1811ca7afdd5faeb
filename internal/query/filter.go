// Package query filters and pages the catalog for browsing.
package query

import (
	"strings"

	"github.com/shopspring/decimal"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
)

// CategoryIndex resolves the category a product code belongs to.
type CategoryIndex interface {
	CategoryOf(code string) (string, bool)
}

// FilterState is the user's current set of filters. Zero values are inactive;
// active filters combine with AND.
type FilterState struct {
	Query      string                   `json:"query"`
	Category   string                   `json:"category,omitempty"`
	MinPrice   *decimal.Decimal         `json:"minPrice,omitempty"`
	MaxPrice   *decimal.Decimal         `json:"maxPrice,omitempty"`
	Attributes map[attribute.Key]string `json:"attributes,omitempty"`
}

// Active reports whether any filter is set.
func (f FilterState) Active() bool {
	if len(words(f.Query)) > 0 || f.Category != "" || f.MinPrice != nil || f.MaxPrice != nil {
		return true
	}
	for _, v := range f.Attributes {
		if v != "" {
			return true
		}
	}
	return false
}

// Filter returns the products matching every active filter, in catalog order.
// index may be nil when no category filter is set.
func Filter(products []domain.Product, index CategoryIndex, f FilterState) []domain.Product {
	terms := words(f.Query)
	selected := f.selectedAttributes()

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !matchesText(p, terms) {
			continue
		}
		if f.Category != "" && !inCategory(index, p.Code, f.Category) {
			continue
		}
		if len(selected) > 0 && !hasAll(p, selected) {
			continue
		}
		if !f.inPriceRange(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func words(query string) []string {
	fields := strings.Fields(query)
	for i, w := range fields {
		fields[i] = strings.ToLower(w)
	}
	return fields
}

// matchesText requires every term to appear in the code or the description.
func matchesText(p domain.Product, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	code := strings.ToLower(p.Code)
	desc := strings.ToLower(p.Description)
	for _, t := range terms {
		if !strings.Contains(code, t) && !strings.Contains(desc, t) {
			return false
		}
	}
	return true
}

func inCategory(index CategoryIndex, code, category string) bool {
	if index == nil {
		return false
	}
	name, ok := index.CategoryOf(code)
	return ok && name == category
}

func (f FilterState) selectedAttributes() []attribute.Attribute {
	var out []attribute.Attribute
	for _, k := range attribute.Keys {
		if v := f.Attributes[k]; v != "" {
			out = append(out, attribute.Attribute{Key: k, Value: v})
		}
	}
	return out
}

func hasAll(p domain.Product, selected []attribute.Attribute) bool {
	for _, want := range selected {
		if !attribute.Has(p.Description, want.Key, want.Value) {
			return false
		}
	}
	return true
}

func (f FilterState) inPriceRange(p domain.Product) bool {
	if f.MinPrice == nil && f.MaxPrice == nil {
		return true
	}
	price := p.EffectiveMinPrice()
	if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
