package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
)

type categoryMap map[string]string

func (m categoryMap) CategoryOf(code string) (string, bool) {
	c, ok := m[code]
	return c, ok
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func variant(wholesale, retail string) domain.PriceVariant {
	return domain.PriceVariant{
		Color:          "Blanco",
		Size:           "M",
		WholesalePrice: decimal.RequireFromString(wholesale),
		RetailPrice:    decimal.RequireFromString(retail),
	}
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{Code: "YZ-100", Description: "Playera cuello redondo manga corta caballero peso completo", Prices: []domain.PriceVariant{variant("50", "65")}},
		{Code: "YZ-110", Description: "Playera cuello V manga corta caballero", Prices: []domain.PriceVariant{variant("48", "64")}},
		{Code: "YZ-200", Description: "Playera cuello redondo manga larga dama con silueta", Prices: []domain.PriceVariant{variant("10", "8"), variant("20", "25")}},
		{Code: "YZ-300", Description: "Pañalero bebés", Prices: nil},
	}
}

func codes(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Code)
	}
	return out
}

func TestFilter_NoFiltersReturnsCatalogInOrder(t *testing.T) {
	products := sampleProducts()
	got := Filter(products, nil, FilterState{})
	assert.Equal(t, products, got)

	got = Filter(products, nil, FilterState{Query: "   \t "})
	assert.Equal(t, codes(products), codes(got), "whitespace-only query is inactive")
	assert.False(t, FilterState{Query: "  "}.Active())
}

func TestFilter_TextQuery(t *testing.T) {
	products := sampleProducts()
	tests := []struct {
		query string
		want  []string
	}{
		{"playera", []string{"YZ-100", "YZ-110", "YZ-200"}},
		{"PLAYERA Caballero", []string{"YZ-100", "YZ-110"}},
		{"yz-1 redondo", []string{"YZ-100"}},
		{"yz-2", []string{"YZ-200"}},
		{"  cuello   v  ", []string{"YZ-110"}},
		{"caballero dama", []string{}},
		{"BEBÉS", []string{"YZ-300"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(products, nil, FilterState{Query: tt.query})
			assert.Equal(t, tt.want, codes(got))
		})
	}
}

func TestFilter_Category(t *testing.T) {
	products := sampleProducts()
	index := categoryMap{"YZ-100": "Caballero", "YZ-110": "Caballero", "YZ-200": "Dama", "YZ-300": "Infantil"}

	got := Filter(products, index, FilterState{Category: "Caballero"})
	assert.Equal(t, []string{"YZ-100", "YZ-110"}, codes(got))

	got = Filter(products, index, FilterState{Category: "Unknown"})
	assert.Empty(t, got)

	got = Filter(products, nil, FilterState{Category: "Caballero"})
	assert.Empty(t, got, "no index means no product can be placed in a category")
}

func TestFilter_Attributes(t *testing.T) {
	products := sampleProducts()

	got := Filter(products, nil, FilterState{Attributes: map[attribute.Key]string{attribute.KeyCollar: "Redondo"}})
	assert.Equal(t, []string{"YZ-100", "YZ-200"}, codes(got))

	got = Filter(products, nil, FilterState{Attributes: map[attribute.Key]string{
		attribute.KeyCollar: "Redondo",
		attribute.KeySleeve: "Corta",
	}})
	assert.Equal(t, []string{"YZ-100"}, codes(got))

	got = Filter(products, nil, FilterState{Attributes: map[attribute.Key]string{attribute.KeyFeature: "ConSilueta"}})
	assert.Equal(t, []string{"YZ-200"}, codes(got))

	got = Filter(products, nil, FilterState{Attributes: map[attribute.Key]string{attribute.KeyGender: ""}})
	assert.Len(t, got, len(products), "empty attribute value is inactive")
}

func TestFilter_PriceRange(t *testing.T) {
	products := sampleProducts()

	// YZ-200 has effective minimum 8.
	got := Filter(products, nil, FilterState{MinPrice: price("9")})
	assert.NotContains(t, codes(got), "YZ-200")

	got = Filter(products, nil, FilterState{MinPrice: price("8")})
	assert.Contains(t, codes(got), "YZ-200")

	got = Filter(products, nil, FilterState{MaxPrice: price("8")})
	assert.Equal(t, []string{"YZ-200", "YZ-300"}, codes(got), "a product without variants prices at zero")

	got = Filter(products, nil, FilterState{MinPrice: price("48"), MaxPrice: price("50")})
	assert.Equal(t, []string{"YZ-100", "YZ-110"}, codes(got))

	got = Filter(products, nil, FilterState{MinPrice: price("60"), MaxPrice: price("10")})
	assert.Empty(t, got)
}

func TestFilter_CombinesWithAnd(t *testing.T) {
	products := sampleProducts()
	index := categoryMap{"YZ-100": "Caballero", "YZ-110": "Caballero", "YZ-200": "Dama"}

	got := Filter(products, index, FilterState{
		Query:      "playera",
		Category:   "Caballero",
		MaxPrice:   price("49"),
		Attributes: map[attribute.Key]string{attribute.KeySleeve: "Corta"},
	})
	assert.Equal(t, []string{"YZ-110"}, codes(got))
}

func numbered(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{Code: fmt.Sprintf("P%02d", i), Description: "Playera"}
	}
	return out
}

func TestPage(t *testing.T) {
	products := numbered(45)

	items, more := Page(products, 0, 20)
	require.Len(t, items, 20)
	assert.True(t, more)
	assert.Equal(t, "P00", items[0].Code)

	items, more = Page(products, 1, 20)
	require.Len(t, items, 20)
	assert.True(t, more)
	assert.Equal(t, "P20", items[0].Code)

	items, more = Page(products, 2, 20)
	require.Len(t, items, 5)
	assert.False(t, more)
	assert.Equal(t, "P44", items[4].Code)

	items, more = Page(products, 3, 20)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.False(t, more)

	items, more = Page(nil, 0, 20)
	assert.Empty(t, items)
	assert.False(t, more)

	items, more = Page(numbered(40), 1, 20)
	assert.Len(t, items, 20)
	assert.False(t, more, "an exactly full last page has nothing after it")
}

func TestPage_HugeIndex(t *testing.T) {
	products := numbered(45)

	for _, idx := range []int{math.MaxInt / 10, math.MaxInt / 20, math.MaxInt} {
		assert.NotPanics(t, func() {
			items, more := Page(products, idx, 20)
			assert.Empty(t, items)
			assert.NotNil(t, items)
			assert.False(t, more)
		}, "page %d", idx)
	}

	items, more := Page(products, 1, math.MaxInt)
	assert.Empty(t, items)
	assert.False(t, more)
}
