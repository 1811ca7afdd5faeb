package domain

import "github.com/shopspring/decimal"

// Channel selects which of a variant's two prices applies to a quote.
type Channel string

const (
	ChannelWholesale Channel = "wholesale"
	ChannelRetail    Channel = "retail"
)

// Valid reports whether c is one of the known sale channels.
func (c Channel) Valid() bool {
	return c == ChannelWholesale || c == ChannelRetail
}

// PriceList is the root of the catalog resource. It is immutable once loaded.
type PriceList struct {
	Metadata Metadata   `json:"metadata"`
	Catalog  []Category `json:"catalog"`
}

// Metadata describes the price list as a whole.
type Metadata struct {
	Brand    string `json:"brand"`
	Date     string `json:"date"`
	Currency string `json:"currency"`
	Taxes    string `json:"taxes"`
	Terms    Terms  `json:"terms"`
	Note     string `json:"note"`
}

// Terms holds the free-text sale conditions for each channel.
type Terms struct {
	Retail    string `json:"retail"`
	Wholesale string `json:"wholesale"`
}

// Category groups products. A product belongs to exactly one category.
type Category struct {
	Name     string    `json:"category"`
	Products []Product `json:"products"`
}

// Product is a catalog entry. Code is unique across the whole catalog.
type Product struct {
	Code        string         `json:"code"`
	Description string         `json:"description"`
	Prices      []PriceVariant `json:"prices"`
}

// PriceVariant is one (color, size) priced unit of a product.
type PriceVariant struct {
	Color          string          `json:"color"`
	Size           string          `json:"size"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
}

// PriceFor returns the variant price for the given channel. Anything other than
// retail is priced as wholesale.
func (v PriceVariant) PriceFor(c Channel) decimal.Decimal {
	if c == ChannelRetail {
		return v.RetailPrice
	}
	return v.WholesalePrice
}

// Variant returns the first variant matching color and size exactly.
func (p Product) Variant(color, size string) (PriceVariant, bool) {
	for _, v := range p.Prices {
		if v.Color == color && v.Size == size {
			return v, true
		}
	}
	return PriceVariant{}, false
}

// EffectiveMinPrice is the lowest of both prices over all variants, or zero
// for a product without variants.
func (p Product) EffectiveMinPrice() decimal.Decimal {
	if len(p.Prices) == 0 {
		return decimal.Zero
	}
	lowest := decimal.Min(p.Prices[0].WholesalePrice, p.Prices[0].RetailPrice)
	for _, v := range p.Prices[1:] {
		lowest = decimal.Min(lowest, v.WholesalePrice, v.RetailPrice)
	}
	return lowest
}

// Colors lists the distinct variant colors in variant order.
func (p Product) Colors() []string {
	return distinct(p.Prices, func(v PriceVariant) (string, bool) { return v.Color, true })
}

// Sizes lists the distinct variant sizes in variant order.
func (p Product) Sizes() []string {
	return distinct(p.Prices, func(v PriceVariant) (string, bool) { return v.Size, true })
}

// SizesFor lists the distinct sizes offered in the given color.
func (p Product) SizesFor(color string) []string {
	return distinct(p.Prices, func(v PriceVariant) (string, bool) { return v.Size, v.Color == color })
}

func distinct(variants []PriceVariant, pick func(PriceVariant) (string, bool)) []string {
	seen := make(map[string]struct{}, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		s, ok := pick(v)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
