package query

import (
	"github.com/shopspring/decimal"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
)

// Browser is one user's browse session: the filter state and the products
// accumulated so far by infinite scroll.
type Browser struct {
	products []domain.Product
	index    CategoryIndex
	pageSize int

	filters   FilterState
	filtered  []domain.Product
	displayed []domain.Product
	page      int
	hasMore   bool
}

// View is the read-only state rendered for a browse session.
type View struct {
	Filters   FilterState      `json:"filters"`
	Products  []domain.Product `json:"products"`
	Page      int              `json:"page"`
	PageSize  int              `json:"pageSize"`
	HasMore   bool             `json:"hasMore"`
	TotalHits int              `json:"totalHits"`
}

// NewBrowser starts a session over products showing the first unfiltered page.
func NewBrowser(products []domain.Product, index CategoryIndex, pageSize int) *Browser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	b := &Browser{products: products, index: index, pageSize: pageSize}
	b.refilter()
	return b
}

// Action is a user event applied to a Browser.
type Action interface {
	applyTo(b *Browser) *domain.Event
}

type (
	UpdateSearchQuery struct{ Query string }
	SelectCategory    struct{ Category string }
	SetPriceRange     struct{ Min, Max *decimal.Decimal }
	ClearFilters      struct{}
	LoadMore          struct{}
	SelectProduct     struct{ Code string }
)

// SelectAttribute sets the filter value for Key; an empty Value clears it.
type SelectAttribute struct {
	Key   attribute.Key
	Value string
}

// Apply runs a single action and returns the navigation event it raised, if any.
func (b *Browser) Apply(a Action) *domain.Event {
	return a.applyTo(b)
}

func (a UpdateSearchQuery) applyTo(b *Browser) *domain.Event {
	b.filters.Query = a.Query
	b.refilter()
	return nil
}

func (a SelectCategory) applyTo(b *Browser) *domain.Event {
	b.filters.Category = a.Category
	b.refilter()
	return nil
}

func (a SetPriceRange) applyTo(b *Browser) *domain.Event {
	b.filters.MinPrice = a.Min
	b.filters.MaxPrice = a.Max
	b.refilter()
	return nil
}

func (a SelectAttribute) applyTo(b *Browser) *domain.Event {
	attrs := make(map[attribute.Key]string, len(b.filters.Attributes)+1)
	for k, v := range b.filters.Attributes {
		attrs[k] = v
	}
	if a.Value == "" {
		delete(attrs, a.Key)
	} else {
		attrs[a.Key] = a.Value
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	b.filters.Attributes = attrs
	b.refilter()
	return nil
}

func (ClearFilters) applyTo(b *Browser) *domain.Event {
	b.filters = FilterState{}
	b.refilter()
	return nil
}

func (LoadMore) applyTo(b *Browser) *domain.Event {
	if !b.hasMore {
		return nil
	}
	next := b.page + 1
	items, more := Page(b.filtered, next, b.pageSize)
	if len(items) == 0 {
		return nil
	}
	b.displayed = append(b.displayed, items...)
	b.page = next
	b.hasMore = more
	return nil
}

func (a SelectProduct) applyTo(*Browser) *domain.Event {
	return &domain.Event{Type: domain.EventProductSelected, Code: a.Code}
}

// refilter recomputes the filtered list and drops any accumulated pages.
func (b *Browser) refilter() {
	b.filtered = Filter(b.products, b.index, b.filters)
	items, more := Page(b.filtered, 0, b.pageSize)
	b.displayed = append([]domain.Product(nil), items...)
	b.page = 0
	b.hasMore = more
}

// View returns the current state.
func (b *Browser) View() View {
	displayed := b.displayed
	if displayed == nil {
		displayed = []domain.Product{}
	}
	return View{
		Filters:   b.filters,
		Products:  displayed,
		Page:      b.page,
		PageSize:  b.pageSize,
		HasMore:   b.hasMore,
		TotalHits: len(b.filtered),
	}
}
