package store

import (
	"context"

	"catalog-quote-service/internal/domain"
)

// CatalogReader exposes the read-only catalog to the query side.
type CatalogReader interface {
	PriceList() domain.PriceList
	AllProducts() []domain.Product
	Categories() []string
	ProductByCode(code string) (domain.Product, error)
	CategoryOf(code string) (string, bool)
	Version() string
}

// CatalogLoader resolves products for quote sessions. Reload retries a failed
// catalog load; it is a no-op once a catalog has been loaded successfully.
type CatalogLoader interface {
	LoadProduct(ctx context.Context, code string) (domain.Product, error)
	Reload(ctx context.Context) error
}
