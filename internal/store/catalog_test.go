package store

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const englishCatalog = `{
	"metadata": {"brand": "Acme", "date": "2025-10", "currency": "MXN", "taxes": "IVA incluido",
		"terms": {"retail": "1-11 pzas", "wholesale": "12+ pzas"}, "note": "n", "printer": "ignored"},
	"catalog": [
		{"category": "Caballero", "products": [
			{"code": "A1", "description": "Playera cuello redondo", "prices": [
				{"color": "Blanco", "size": "M", "wholesalePrice": 50, "retailPrice": 65.5}
			]},
			{"code": "A2", "description": "Playera cuello V", "prices": []}
		]},
		{"category": "Dama", "products": [
			{"code": "B1", "description": "Blusa", "prices": [
				{"color": "Rosa", "size": "CH", "wholesalePrice": "40.25", "retailPrice": 52}
			]}
		]}
	]
}`

const spanishCatalog = `{
	"metadata": {"marca": "Yazbek", "fecha_lista": "Octubre 2025", "moneda": "MXN", "impuestos": "IVA",
		"condiciones": {"menudeo": "menos de 12", "mayoreo": "12 o más"}, "nota": "sujeto a cambio"},
	"catalogo": [
		{"categoria": "Playeras", "productos": [
			{"codigo": "YZ-1", "descripcion": "Playera manga corta", "precios": [
				{"color": "Negro", "talla": "G", "precio_mayoreo": 48.9, "precio_menudeo": 61}
			]}
		]}
	]
}`

func TestLoad_EnglishSchema(t *testing.T) {
	list, err := Load([]byte(englishCatalog))
	require.NoError(t, err)

	assert.Equal(t, "Acme", list.Metadata.Brand)
	assert.Equal(t, "12+ pzas", list.Metadata.Terms.Wholesale)
	require.Len(t, list.Catalog, 2)
	assert.Equal(t, "Caballero", list.Catalog[0].Name)
	require.Len(t, list.Catalog[0].Products, 2)

	v := list.Catalog[0].Products[0].Prices[0]
	assert.Equal(t, "Blanco", v.Color)
	assert.Equal(t, "M", v.Size)
	assert.True(t, dec("50").Equal(v.WholesalePrice))
	assert.True(t, dec("65.5").Equal(v.RetailPrice))
	assert.True(t, dec("40.25").Equal(list.Catalog[1].Products[0].Prices[0].WholesalePrice), "quoted amounts decode too")
}

func TestLoad_SpanishSchema(t *testing.T) {
	list, err := Load([]byte(spanishCatalog))
	require.NoError(t, err)

	assert.Equal(t, "Yazbek", list.Metadata.Brand)
	assert.Equal(t, "Octubre 2025", list.Metadata.Date)
	assert.Equal(t, "menos de 12", list.Metadata.Terms.Retail)
	assert.Equal(t, "12 o más", list.Metadata.Terms.Wholesale)
	require.Len(t, list.Catalog, 1)

	p := list.Catalog[0].Products[0]
	assert.Equal(t, "YZ-1", p.Code)
	assert.Equal(t, "Playera manga corta", p.Description)
	require.Len(t, p.Prices, 1)
	assert.Equal(t, "G", p.Prices[0].Size)
	assert.True(t, dec("48.9").Equal(p.Prices[0].WholesalePrice))
	assert.True(t, dec("61").Equal(p.Prices[0].RetailPrice))
}

func TestLoad_MissingFieldsDefault(t *testing.T) {
	list, err := Load([]byte(`{"catalog": [{"products": [{"code": "X", "prices": [{"color": "Azul"}]}]}]}`))
	require.NoError(t, err)

	assert.Empty(t, list.Metadata.Brand)
	require.Len(t, list.Catalog, 1)
	assert.Empty(t, list.Catalog[0].Name)
	v := list.Catalog[0].Products[0].Prices[0]
	assert.Empty(t, v.Size)
	assert.True(t, v.WholesalePrice.IsZero())
	assert.True(t, v.RetailPrice.IsZero())

	empty, err := Load([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, empty.Catalog)
}

func TestLoad_Malformed(t *testing.T) {
	cases := map[string]string{
		"truncated":     `{"catalog": [`,
		"empty":         ``,
		"wrong type":    `{"catalog": {"category": "x"}}`,
		"bad price":     `{"catalog": [{"products": [{"prices": [{"wholesalePrice": "abc"}]}]}]}`,
		"not an object": `"catalog"`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(payload))
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
			assert.NotEmpty(t, parseErr.Reason)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestLoad_RejectsNegativePrices(t *testing.T) {
	cases := map[string]string{
		"wholesale": `{"catalog": [{"products": [{"code": "A1", "prices": [{"color": "Blanco", "size": "M", "wholesalePrice": -1, "retailPrice": 10}]}]}]}`,
		"retail":    `{"catalogo": [{"productos": [{"codigo": "A1", "precios": [{"color": "Blanco", "talla": "M", "precio_mayoreo": 10, "precio_menudeo": "-0.01"}]}]}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(payload))
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
			assert.ErrorIs(t, err, ErrNegativePrice)
			assert.Contains(t, parseErr.Reason, "A1 Blanco/M")
		})
	}

	_, err := Load([]byte(`{"catalog": [{"products": [{"code": "A1", "prices": [{"color": "Blanco", "size": "M", "wholesalePrice": 0, "retailPrice": 0}]}]}]}`))
	assert.NoError(t, err, "zero is a valid price")
}

func TestAllProducts_PreservesOrder(t *testing.T) {
	list, err := Load([]byte(englishCatalog))
	require.NoError(t, err)

	products := AllProducts(list)
	codes := make([]string, 0, len(products))
	for _, p := range products {
		codes = append(codes, p.Code)
	}
	assert.Equal(t, []string{"A1", "A2", "B1"}, codes)
}
