package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProduct_EffectiveMinPrice(t *testing.T) {
	p := Product{Code: "P1", Prices: []PriceVariant{
		{Color: "Blanco", Size: "M", WholesalePrice: d("10"), RetailPrice: d("8")},
		{Color: "Negro", Size: "G", WholesalePrice: d("20"), RetailPrice: d("25")},
	}}
	assert.True(t, d("8").Equal(p.EffectiveMinPrice()))

	empty := Product{Code: "P2"}
	assert.True(t, empty.EffectiveMinPrice().IsZero())
}

func TestProduct_VariantAndSizes(t *testing.T) {
	p := Product{Prices: []PriceVariant{
		{Color: "Blanco", Size: "CH", WholesalePrice: d("50")},
		{Color: "Blanco", Size: "M", WholesalePrice: d("52")},
		{Color: "Rojo", Size: "M", WholesalePrice: d("55")},
		{Color: "Rojo", Size: "G", WholesalePrice: d("57")},
		{Color: "Blanco", Size: "CH", WholesalePrice: d("99")},
	}}

	v, ok := p.Variant("Blanco", "CH")
	assert.True(t, ok)
	assert.True(t, d("50").Equal(v.WholesalePrice), "first matching variant wins on duplicates")

	_, ok = p.Variant("Blanco", "G")
	assert.False(t, ok)

	assert.Equal(t, []string{"Blanco", "Rojo"}, p.Colors())
	assert.Equal(t, []string{"CH", "M", "G"}, p.Sizes())
	assert.Equal(t, []string{"M", "G"}, p.SizesFor("Rojo"))
	assert.Empty(t, p.SizesFor("Verde"))
}

func TestPriceVariant_PriceFor(t *testing.T) {
	v := PriceVariant{WholesalePrice: d("40"), RetailPrice: d("55.5")}
	assert.True(t, d("40").Equal(v.PriceFor(ChannelWholesale)))
	assert.True(t, d("55.5").Equal(v.PriceFor(ChannelRetail)))
	assert.True(t, ChannelRetail.Valid())
	assert.False(t, Channel("mayoreo").Valid())
}
