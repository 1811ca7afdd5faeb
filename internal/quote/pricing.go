// Package quote prices a configured product.
package quote

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-quote-service/internal/domain"
)

// MaxPrints is the number of print add-ons a quote can carry.
const MaxPrints = 4

var hundred = decimal.NewFromInt(100)

// Config is the user's quote configuration.
type Config struct {
	Channel  domain.Channel  `json:"channel"`
	Color    string          `json:"color,omitempty"`
	Size     string          `json:"size,omitempty"`
	Prints   Prints          `json:"prints"`
	Quantity int             `json:"quantity"`
	Margin   decimal.Decimal `json:"margin"`
}

// DefaultConfig is wholesale, one unit, no prints and no margin.
func DefaultConfig() Config {
	return Config{
		Channel:  domain.ChannelWholesale,
		Prints:   Prints{},
		Quantity: 1,
		Margin:   decimal.Zero,
	}
}

// PriceBreakdown itemizes a quote from base price to grand total.
type PriceBreakdown struct {
	BasePrice            decimal.Decimal `json:"basePrice"`
	BasePriceExplanation string          `json:"basePriceExplanation"`
	PrintsTotal          decimal.Decimal `json:"printsTotal"`
	PrintsExplanation    string          `json:"printsExplanation"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	ProfitAmount         decimal.Decimal `json:"profitAmount"`
	ProfitExplanation    string          `json:"profitExplanation"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	Quantity             int             `json:"quantity"`
	Total                decimal.Decimal `json:"total"`
}

// Calculate prices product under c. It reports false when no variant exists for
// the selected color and size, which is an incomplete configuration rather than
// an error.
func Calculate(product domain.Product, c Config) (PriceBreakdown, bool) {
	if c.Color == "" || c.Size == "" {
		return PriceBreakdown{}, false
	}
	variant, ok := product.Variant(c.Color, c.Size)
	if !ok {
		return PriceBreakdown{}, false
	}

	channel := c.Channel
	if !channel.Valid() {
		channel = domain.ChannelWholesale
	}
	margin := ClampMargin(c.Margin)
	quantity := ClampQuantity(c.Quantity)

	base := NonNegative(variant.PriceFor(channel))
	prints := c.Prints.Total()
	subtotal := base.Add(prints)
	profit := subtotal.Mul(margin).Div(hundred)
	unit := subtotal.Add(profit)

	return PriceBreakdown{
		BasePrice:            base,
		BasePriceExplanation: fmt.Sprintf("Base price (%s) - %s - %s: %s", channel, c.Color, c.Size, money(base)),
		PrintsTotal:          prints,
		PrintsExplanation:    c.Prints.explain(),
		Subtotal:             subtotal,
		ProfitAmount:         profit,
		ProfitExplanation:    fmt.Sprintf("%s%% profit: %s", margin.StringFixed(1), money(profit)),
		UnitPrice:            unit,
		Quantity:             quantity,
		Total:                unit.Mul(decimal.NewFromInt(int64(quantity))),
	}, true
}

// ClampMargin limits a margin percentage to [0, 100].
func ClampMargin(m decimal.Decimal) decimal.Decimal {
	switch {
	case m.IsNegative():
		return decimal.Zero
	case m.GreaterThan(hundred):
		return hundred
	default:
		return m
	}
}

// ClampQuantity floors a quantity at 1.
func ClampQuantity(q int) int {
	return max(q, 1)
}

// NonNegative maps negative amounts to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseAmount reads a free-text money or percentage entry. Anything that does
// not parse is zero.
func ParseAmount(text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
