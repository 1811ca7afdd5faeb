package api

import (
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
	"catalog-quote-service/internal/query"
	"catalog-quote-service/internal/store"
)

// catalogView pairs the read-only catalog with facets derived on first use.
type catalogView struct {
	store store.CatalogReader

	once   sync.Once
	facets query.Facets
}

func newCatalogView(s store.CatalogReader) *catalogView {
	return &catalogView{store: s}
}

func (c *catalogView) Facets() query.Facets {
	c.once.Do(func() {
		c.facets = query.BuildFacets(c.store.Categories(), c.store.AllProducts())
	})
	return c.facets
}

// ProductDetail is a product with its derived data.
type ProductDetail struct {
	domain.Product
	Category   string                `json:"category"`
	Attributes []attribute.Attribute `json:"attributes"`
	MinPrice   decimal.Decimal       `json:"minPrice"`
}

func (c *catalogView) detail(p domain.Product) ProductDetail {
	category, _ := c.store.CategoryOf(p.Code)
	attrs := attribute.Extract(p.Description)
	if attrs == nil {
		attrs = []attribute.Attribute{}
	}
	return ProductDetail{
		Product:    p,
		Category:   category,
		Attributes: attrs,
		MinPrice:   p.EffectiveMinPrice(),
	}
}

// ListParams is a stateless filter-and-page request.
type ListParams struct {
	Filters  query.FilterState
	Page     int
	PageSize int
}

// ListResult is one page of filtered products.
type ListResult struct {
	Products   []domain.Product
	TotalItems int
	HasMore    bool
}

func (c *catalogView) List(p ListParams) ListResult {
	filtered := query.Filter(c.store.AllProducts(), c.store, p.Filters)
	items, more := query.Page(filtered, p.Page, p.PageSize)
	return ListResult{Products: items, TotalItems: len(filtered), HasMore: more}
}

func totalPages(total, limit int) int {
	if total == 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// optionalAmount reads a free-text amount; blank or unparseable text is unset.
func optionalAmount(text string) *decimal.Decimal {
	text = strings.TrimPrefix(strings.TrimSpace(text), "$")
	if text == "" {
		return nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil
	}
	return &d
}

func etag(version string) string {
	return strconv.Quote(version)
}
