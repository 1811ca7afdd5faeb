package query

import (
	"github.com/shopspring/decimal"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
)

// Facets are the filter choices offered to the user.
type Facets struct {
	Categories []string                   `json:"categories"`
	Attributes map[attribute.Key][]string `json:"attributes"`
	PriceRange PriceRange                 `json:"priceRange"`
}

// PriceRange spans the effective minimum prices of the catalog.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// BuildFacets derives every facet from the catalog.
func BuildFacets(categories []string, products []domain.Product) Facets {
	f := Facets{
		Categories: categories,
		Attributes: make(map[attribute.Key][]string, len(attribute.Keys)),
	}
	if f.Categories == nil {
		f.Categories = []string{}
	}
	for _, k := range attribute.Keys {
		f.Attributes[k] = attribute.AvailableValues(products, k)
	}
	for i, p := range products {
		price := p.EffectiveMinPrice()
		if i == 0 {
			f.PriceRange = PriceRange{Min: price, Max: price}
			continue
		}
		f.PriceRange.Min = decimal.Min(f.PriceRange.Min, price)
		f.PriceRange.Max = decimal.Max(f.PriceRange.Max, price)
	}
	return f
}
