package quote

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PrintConfig is one print add-on. Positions are dense and 1-based.
type PrintConfig struct {
	Position int             `json:"position"`
	Price    decimal.Decimal `json:"price"`
}

// Prints is an ordered print add-on list. Edits return a new list.
type Prints []PrintConfig

// Add appends a zero-priced print. It reports false, leaving the list as is,
// when MaxPrints are already configured.
func (p Prints) Add() (Prints, bool) {
	if len(p) >= MaxPrints {
		return p, false
	}
	out := make(Prints, len(p), len(p)+1)
	copy(out, p)
	return append(out, PrintConfig{Position: len(p) + 1, Price: decimal.Zero}), true
}

// Remove drops the print at position and renumbers the rest 1..k.
func (p Prints) Remove(position int) Prints {
	out := make(Prints, 0, len(p))
	for _, pc := range p {
		if pc.Position == position {
			continue
		}
		out = append(out, PrintConfig{Position: len(out) + 1, Price: pc.Price})
	}
	return out
}

// UpdatePrice sets the price of the print at position. Negative prices are
// stored as zero.
func (p Prints) UpdatePrice(position int, price decimal.Decimal) Prints {
	out := make(Prints, len(p))
	copy(out, p)
	for i := range out {
		if out[i].Position == position {
			out[i].Price = NonNegative(price)
		}
	}
	return out
}

// Total sums the print prices.
func (p Prints) Total() decimal.Decimal {
	total := decimal.Zero
	for _, pc := range p {
		total = total.Add(NonNegative(pc.Price))
	}
	return total
}

func (p Prints) explain() string {
	if len(p) == 0 {
		return "No prints"
	}
	parts := make([]string, len(p))
	for i, pc := range p {
		parts[i] = money(NonNegative(pc.Price))
	}
	return "Prints: " + strings.Join(parts, " + ") + " = " + money(p.Total())
}
