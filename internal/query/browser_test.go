package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
)

func TestBrowser_InfiniteScroll(t *testing.T) {
	b := NewBrowser(numbered(45), nil, 20)

	v := b.View()
	assert.Len(t, v.Products, 20)
	assert.True(t, v.HasMore)
	assert.Equal(t, 0, v.Page)
	assert.Equal(t, 45, v.TotalHits)

	assert.Nil(t, b.Apply(LoadMore{}))
	v = b.View()
	assert.Len(t, v.Products, 40)
	assert.True(t, v.HasMore)
	assert.Equal(t, 1, v.Page)

	b.Apply(LoadMore{})
	v = b.View()
	assert.Len(t, v.Products, 45)
	assert.False(t, v.HasMore)
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, codes(numbered(45)), codes(v.Products))

	b.Apply(LoadMore{})
	v = b.View()
	assert.Len(t, v.Products, 45, "loading past the end is a no-op")
	assert.Equal(t, 2, v.Page)
}

func TestBrowser_FilterChangeResetsAccumulation(t *testing.T) {
	products := numbered(45)
	products[30].Description = "Playera cuello redondo"
	b := NewBrowser(products, nil, 20)
	b.Apply(LoadMore{})
	require.Len(t, b.View().Products, 40)

	b.Apply(UpdateSearchQuery{Query: "playera"})
	v := b.View()
	assert.Len(t, v.Products, 20)
	assert.Equal(t, 0, v.Page)
	assert.True(t, v.HasMore)

	b.Apply(LoadMore{})
	b.Apply(SelectAttribute{Key: attribute.KeyCollar, Value: "Redondo"})
	v = b.View()
	assert.Equal(t, []string{"P30"}, codes(v.Products))
	assert.Equal(t, 0, v.Page)
	assert.False(t, v.HasMore)

	b.Apply(SelectAttribute{Key: attribute.KeyCollar, Value: ""})
	v = b.View()
	assert.Nil(t, v.Filters.Attributes)
	assert.Len(t, v.Products, 20)
}

func TestBrowser_AllFilterActions(t *testing.T) {
	products := sampleProducts()
	index := categoryMap{"YZ-100": "Caballero", "YZ-110": "Caballero", "YZ-200": "Dama", "YZ-300": "Infantil"}
	b := NewBrowser(products, index, 20)

	b.Apply(SelectCategory{Category: "Caballero"})
	assert.Equal(t, []string{"YZ-100", "YZ-110"}, codes(b.View().Products))

	floor := decimal.RequireFromString("49")
	b.Apply(SetPriceRange{Min: &floor})
	assert.Equal(t, []string{"YZ-100"}, codes(b.View().Products))

	b.Apply(ClearFilters{})
	v := b.View()
	assert.False(t, v.Filters.Active())
	assert.Equal(t, codes(products), codes(v.Products))
}

func TestBrowser_SelectProductRaisesEvent(t *testing.T) {
	b := NewBrowser(sampleProducts(), nil, 20)
	before := b.View()

	ev := b.Apply(SelectProduct{Code: "YZ-200"})
	require.NotNil(t, ev)
	assert.Equal(t, domain.Event{Type: domain.EventProductSelected, Code: "YZ-200"}, *ev)
	assert.Equal(t, before, b.View())
}

func TestBrowser_EmptyCatalog(t *testing.T) {
	b := NewBrowser(nil, nil, 0)
	v := b.View()
	assert.NotNil(t, v.Products)
	assert.Empty(t, v.Products)
	assert.False(t, v.HasMore)
	assert.Equal(t, DefaultPageSize, v.PageSize)
}
