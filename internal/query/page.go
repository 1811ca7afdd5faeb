package query

import "catalog-quote-service/internal/domain"

// DefaultPageSize is the number of products shown per page.
const DefaultPageSize = 20

// Page returns the pageIndex-th slice of products and whether more follow.
// A page past the end is empty with hasMore false.
func Page(products []domain.Product, pageIndex, pageSize int) ([]domain.Product, bool) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	// Compare by division so a huge index or size cannot overflow.
	if len(products) == 0 || pageIndex > (len(products)-1)/pageSize {
		return []domain.Product{}, false
	}
	start := pageIndex * pageSize
	end := start + min(pageSize, len(products)-start)
	return products[start:end], end < len(products)
}
