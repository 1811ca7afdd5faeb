package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"catalog-quote-service/internal/domain"
)

var (
	// ErrProductNotFound is returned for an unknown product code.
	ErrProductNotFound = errors.New("store: product not found")
	// ErrNegativePrice is wrapped by the ParseError for a variant priced below zero.
	ErrNegativePrice = errors.New("store: negative price")
)

// ParseError reports a malformed catalog payload.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return "store: malformed catalog: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// The wire types accept both the English schema and the Spanish-keyed price
// list. English keys win when a document carries both.
type priceListWire struct {
	Metadata metadataWire   `json:"metadata"`
	Catalog  []categoryWire `json:"catalog"`
	Catalogo []categoryWire `json:"catalogo"`
}

type metadataWire struct {
	Brand       string    `json:"brand"`
	Marca       string    `json:"marca"`
	Date        string    `json:"date"`
	FechaLista  string    `json:"fecha_lista"`
	Currency    string    `json:"currency"`
	Moneda      string    `json:"moneda"`
	Taxes       string    `json:"taxes"`
	Impuestos   string    `json:"impuestos"`
	Terms       termsWire `json:"terms"`
	Condiciones termsWire `json:"condiciones"`
	Note        string    `json:"note"`
	Nota        string    `json:"nota"`
}

type termsWire struct {
	Retail    string `json:"retail"`
	Menudeo   string `json:"menudeo"`
	Wholesale string `json:"wholesale"`
	Mayoreo   string `json:"mayoreo"`
}

type categoryWire struct {
	Category  string        `json:"category"`
	Categoria string        `json:"categoria"`
	Products  []productWire `json:"products"`
	Productos []productWire `json:"productos"`
}

type productWire struct {
	Code        string        `json:"code"`
	Codigo      string        `json:"codigo"`
	Description string        `json:"description"`
	Descripcion string        `json:"descripcion"`
	Prices      []variantWire `json:"prices"`
	Precios     []variantWire `json:"precios"`
}

type variantWire struct {
	Color          string           `json:"color"`
	Size           string           `json:"size"`
	Talla          string           `json:"talla"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice"`
	PrecioMayoreo  *decimal.Decimal `json:"precio_mayoreo"`
	RetailPrice    *decimal.Decimal `json:"retailPrice"`
	PrecioMenudeo  *decimal.Decimal `json:"precio_menudeo"`
}

// Load decodes a catalog payload. Unknown fields are ignored and missing ones
// take their zero value; a payload that is not valid JSON for the schema fails
// with a *ParseError.
func Load(raw []byte) (domain.PriceList, error) {
	var wire priceListWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.PriceList{}, &ParseError{Reason: err.Error(), Err: err}
	}

	m := wire.Metadata
	list := domain.PriceList{
		Metadata: domain.Metadata{
			Brand:    pick(m.Brand, m.Marca),
			Date:     pick(m.Date, m.FechaLista),
			Currency: pick(m.Currency, m.Moneda),
			Taxes:    pick(m.Taxes, m.Impuestos),
			Terms: domain.Terms{
				Retail:    pick(m.Terms.Retail, pick(m.Terms.Menudeo, pick(m.Condiciones.Retail, m.Condiciones.Menudeo))),
				Wholesale: pick(m.Terms.Wholesale, pick(m.Terms.Mayoreo, pick(m.Condiciones.Wholesale, m.Condiciones.Mayoreo))),
			},
			Note: pick(m.Note, m.Nota),
		},
	}

	categories := wire.Catalog
	if categories == nil {
		categories = wire.Catalogo
	}
	list.Catalog = make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		category, err := c.toDomain()
		if err != nil {
			return domain.PriceList{}, err
		}
		list.Catalog = append(list.Catalog, category)
	}
	return list, nil
}

func (c categoryWire) toDomain() (domain.Category, error) {
	products := c.Products
	if products == nil {
		products = c.Productos
	}
	out := domain.Category{
		Name:     pick(c.Category, c.Categoria),
		Products: make([]domain.Product, 0, len(products)),
	}
	for _, p := range products {
		product, err := p.toDomain()
		if err != nil {
			return domain.Category{}, err
		}
		out.Products = append(out.Products, product)
	}
	return out, nil
}

func (p productWire) toDomain() (domain.Product, error) {
	variants := p.Prices
	if variants == nil {
		variants = p.Precios
	}
	out := domain.Product{
		Code:        pick(p.Code, p.Codigo),
		Description: pick(p.Description, p.Descripcion),
		Prices:      make([]domain.PriceVariant, 0, len(variants)),
	}
	for _, v := range variants {
		pv := domain.PriceVariant{
			Color:          v.Color,
			Size:           pick(v.Size, v.Talla),
			WholesalePrice: amount(v.WholesalePrice, v.PrecioMayoreo),
			RetailPrice:    amount(v.RetailPrice, v.PrecioMenudeo),
		}
		if pv.WholesalePrice.IsNegative() || pv.RetailPrice.IsNegative() {
			return domain.Product{}, &ParseError{
				Reason: fmt.Sprintf("negative price for %s %s/%s", out.Code, pv.Color, pv.Size),
				Err:    ErrNegativePrice,
			}
		}
		out.Prices = append(out.Prices, pv)
	}
	return out, nil
}

// AllProducts flattens every category's products, keeping category order and
// then in-category order.
func AllProducts(list domain.PriceList) []domain.Product {
	total := 0
	for _, c := range list.Catalog {
		total += len(c.Products)
	}
	out := make([]domain.Product, 0, total)
	for _, c := range list.Catalog {
		out = append(out, c.Products...)
	}
	return out
}

func pick(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

func amount(primary, fallback *decimal.Decimal) decimal.Decimal {
	switch {
	case primary != nil:
		return *primary
	case fallback != nil:
		return *fallback
	default:
		return decimal.Zero
	}
}
