package store

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"catalog-quote-service/internal/domain"
)

// MemoryStore holds a loaded catalog and the lookup indexes derived from it.
// It is never mutated after construction, so readers need no locking.
type MemoryStore struct {
	list       domain.PriceList
	products   []domain.Product
	categories []string
	byCode     map[string]int
	categoryOf map[string]string
	version    string
}

// Open parses raw and indexes the resulting catalog. The store version is a
// fingerprint of raw.
func Open(raw []byte) (*MemoryStore, error) {
	list, err := Load(raw)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(list, Fingerprint(raw)), nil
}

// NewMemoryStore indexes an already parsed catalog.
func NewMemoryStore(list domain.PriceList, version string) *MemoryStore {
	s := &MemoryStore{
		list:       list,
		products:   AllProducts(list),
		categories: make([]string, 0, len(list.Catalog)),
		byCode:     make(map[string]int),
		categoryOf: make(map[string]string),
		version:    version,
	}
	for _, c := range list.Catalog {
		s.categories = append(s.categories, c.Name)
		for _, p := range c.Products {
			if _, ok := s.categoryOf[p.Code]; !ok {
				s.categoryOf[p.Code] = c.Name
			}
		}
	}
	for i, p := range s.products {
		if _, ok := s.byCode[p.Code]; !ok {
			s.byCode[p.Code] = i
		}
	}
	return s
}

// Fingerprint returns a short stable hash of a catalog payload.
func Fingerprint(raw []byte) string {
	return strconv.FormatUint(xxhash.Sum64(raw), 16)
}

func (s *MemoryStore) PriceList() domain.PriceList {
	return s.list
}

// AllProducts returns the flattened catalog. Callers must not modify it.
func (s *MemoryStore) AllProducts() []domain.Product {
	return s.products
}

// Categories returns category names in catalog order.
func (s *MemoryStore) Categories() []string {
	return s.categories
}

func (s *MemoryStore) ProductByCode(code string) (domain.Product, error) {
	i, ok := s.byCode[code]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

func (s *MemoryStore) CategoryOf(code string) (string, bool) {
	name, ok := s.categoryOf[code]
	return name, ok
}

func (s *MemoryStore) Version() string {
	return s.version
}

// LoadProduct satisfies CatalogLoader for an already loaded catalog.
func (s *MemoryStore) LoadProduct(_ context.Context, code string) (domain.Product, error) {
	return s.ProductByCode(code)
}

// Reload is a no-op: a MemoryStore is loaded by construction.
func (s *MemoryStore) Reload(context.Context) error {
	return nil
}
