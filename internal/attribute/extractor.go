// Package attribute derives filterable tags from free-text product descriptions.
package attribute

import (
	"sort"
	"strings"

	"catalog-quote-service/internal/domain"
)

// Key names an attribute facet.
type Key string

const (
	KeyCollar  Key = "collar"
	KeySleeve  Key = "sleeve"
	KeyGender  Key = "gender"
	KeyFeature Key = "feature"
)

// Keys lists every attribute key in display order.
var Keys = []Key{KeyCollar, KeySleeve, KeyGender, KeyFeature}

// Valid reports whether k is a known attribute key.
func (k Key) Valid() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Attribute is a (key, value) tag derived from a description.
type Attribute struct {
	Key   Key    `json:"key"`
	Value string `json:"value"`
}

// Rule maps any of its substrings to Value.
type Rule struct {
	Substrings []string
	Value      string
}

// Group is an ordered rule list for one key. An exclusive group yields at most
// its first matching rule; a non-exclusive group yields every matching rule.
type Group struct {
	Key       Key
	Exclusive bool
	Rules     []Rule
}

// Rules is the description keyword table. Substrings are lowercase.
var Rules = []Group{
	{Key: KeyCollar, Exclusive: true, Rules: []Rule{
		{Substrings: []string{"cuello redondo"}, Value: "Redondo"},
		{Substrings: []string{"cuello v"}, Value: "V"},
	}},
	{Key: KeySleeve, Exclusive: true, Rules: []Rule{
		{Substrings: []string{"manga corta"}, Value: "Corta"},
		{Substrings: []string{"manga larga"}, Value: "Larga"},
		{Substrings: []string{"sin mangas"}, Value: "SinMangas"},
	}},
	{Key: KeyGender, Exclusive: true, Rules: []Rule{
		{Substrings: []string{"caballero"}, Value: "Caballero"},
		{Substrings: []string{"dama"}, Value: "Dama"},
		{Substrings: []string{"jóvenes"}, Value: "Jóvenes"},
		{Substrings: []string{"niños"}, Value: "Niños"},
		{Substrings: []string{"bebés"}, Value: "Bebés"},
	}},
	{Key: KeyFeature, Rules: []Rule{
		{Substrings: []string{"peso completo"}, Value: "PesoCompleto"},
		{Substrings: []string{"silueta"}, Value: "ConSilueta"},
		{Substrings: []string{"jaspe", "neón"}, Value: "JaspeNeon"},
		{Substrings: []string{"sublitee"}, Value: "SubliTee"},
	}},
}

// Extract returns the attributes of description in rule table order.
func Extract(description string) []Attribute {
	lower := strings.ToLower(description)
	var out []Attribute
	for _, g := range Rules {
		for _, r := range g.Rules {
			if !r.matches(lower) {
				continue
			}
			out = append(out, Attribute{Key: g.Key, Value: r.Value})
			if g.Exclusive {
				break
			}
		}
	}
	return out
}

func (r Rule) matches(lower string) bool {
	for _, s := range r.Substrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Has reports whether description yields the attribute (key, value).
func Has(description string, key Key, value string) bool {
	for _, a := range Extract(description) {
		if a.Key == key && a.Value == value {
			return true
		}
	}
	return false
}

// AvailableValues returns the sorted distinct values of key over products.
func AvailableValues(products []domain.Product, key Key) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		for _, a := range Extract(p.Description) {
			if a.Key == key {
				seen[a.Value] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
