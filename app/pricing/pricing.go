// Package pricing decides which price fields a catalog item carries based on
// its category. Categories map to one of four variants; each variant defines
// an ordered set of price inputs, and every variant accepts an optional
// discount ("offers") on top.
package pricing

import "strings"

// Variant is a pricing shape.
type Variant string

const (
	// Simple is a single flat price. The default for unknown categories.
	Simple Variant = "simple"
	// Sandwich has a medium and a large price.
	Sandwich Variant = "sandwich"
	// Pizza has small, medium, and large prices.
	Pizza Variant = "pizza"
	// Crepe has four prices: triangle medium/large and roll medium/large.
	Crepe Variant = "crepe"
)

// Field describes one price input of a variant.
type Field struct {
	Key      string `json:"key"`   // record column: price, price_medium, price_large, price_family
	Label    string `json:"label"` // operator-facing label
	Required bool   `json:"required"`
}

// Classify maps a category name to its pricing variant. Matching is
// case-insensitive on the trimmed name; any unrecognised category gets the
// Simple variant.
func Classify(categoryName string) Variant {
	switch strings.ToLower(strings.TrimSpace(categoryName)) {
	case "crepe", "crepe pizza":
		return Crepe
	case "pizza":
		return Pizza
	case "sandwiches":
		return Sandwich
	default:
		return Simple
	}
}

// RequiredFields returns the ordered price inputs of a variant. All of them
// are required; the optional discount field is appended by OptionalFields.
func RequiredFields(v Variant) []Field {
	switch v {
	case Crepe:
		return []Field{
			{Key: "price", Label: "Triangle medium price", Required: true},
			{Key: "price_medium", Label: "Triangle large price", Required: true},
			{Key: "price_large", Label: "Roll medium price", Required: true},
			{Key: "price_family", Label: "Roll large price", Required: true},
		}
	case Pizza:
		return []Field{
			{Key: "price", Label: "Small price", Required: true},
			{Key: "price_medium", Label: "Medium price", Required: true},
			{Key: "price_large", Label: "Large price", Required: true},
		}
	case Sandwich:
		return []Field{
			{Key: "price", Label: "Medium price", Required: true},
			{Key: "price_large", Label: "Large price", Required: true},
		}
	default:
		return []Field{
			{Key: "price", Label: "Price", Required: true},
		}
	}
}

// OptionalFields returns the price inputs a variant accepts but does not
// require. Every variant takes an "offers" discount.
func OptionalFields(Variant) []Field {
	return []Field{
		{Key: "offers", Label: "Discount price", Required: false},
	}
}

// AllowedKeys returns the set of record columns the variant may populate:
// its required fields plus the optional ones. Anything outside this set must
// never reach the record.
func AllowedKeys(v Variant) map[string]bool {
	keys := make(map[string]bool)
	for _, f := range RequiredFields(v) {
		keys[f.Key] = true
	}
	for _, f := range OptionalFields(v) {
		keys[f.Key] = true
	}
	return keys
}
