package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matjarhq/matjar/app/pricing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want pricing.Variant
	}{
		{"crepe", pricing.Crepe},
		{"Crepe", pricing.Crepe},
		{"CREPE PIZZA", pricing.Crepe},
		{"crepe pizza", pricing.Crepe},
		{"pizza", pricing.Pizza},
		{"Pizza", pricing.Pizza},
		{"sandwiches", pricing.Sandwich},
		{"SandWiches", pricing.Sandwich},
		{"  pizza  ", pricing.Pizza},
		{"drinks", pricing.Simple},
		{"", pricing.Simple},
		{"sandwich", pricing.Simple}, // singular is not a known category
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, pricing.Classify(tc.name), "Classify(%q)", tc.name)
	}
}

func TestRequiredFields_OrderAndKeys(t *testing.T) {
	keys := func(fields []pricing.Field) []string {
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = f.Key
		}
		return out
	}

	assert.Equal(t, []string{"price"}, keys(pricing.RequiredFields(pricing.Simple)))
	assert.Equal(t, []string{"price", "price_large"}, keys(pricing.RequiredFields(pricing.Sandwich)))
	assert.Equal(t, []string{"price", "price_medium", "price_large"}, keys(pricing.RequiredFields(pricing.Pizza)))
	assert.Equal(t,
		[]string{"price", "price_medium", "price_large", "price_family"},
		keys(pricing.RequiredFields(pricing.Crepe)))
}

func TestRequiredFields_AllRequired(t *testing.T) {
	for _, v := range []pricing.Variant{pricing.Simple, pricing.Sandwich, pricing.Pizza, pricing.Crepe} {
		for _, f := range pricing.RequiredFields(v) {
			assert.Truef(t, f.Required, "%s/%s must be required", v, f.Key)
		}
	}
}

func TestOptionalFields_OffersOnEveryVariant(t *testing.T) {
	for _, v := range []pricing.Variant{pricing.Simple, pricing.Sandwich, pricing.Pizza, pricing.Crepe} {
		opts := pricing.OptionalFields(v)
		assert.Len(t, opts, 1)
		assert.Equal(t, "offers", opts[0].Key)
		assert.False(t, opts[0].Required)
	}
}

func TestAllowedKeys_ExcludesOtherVariants(t *testing.T) {
	sandwich := pricing.AllowedKeys(pricing.Sandwich)
	assert.True(t, sandwich["price"])
	assert.True(t, sandwich["price_large"])
	assert.True(t, sandwich["offers"])
	assert.False(t, sandwich["price_medium"])
	assert.False(t, sandwich["price_family"])

	simple := pricing.AllowedKeys(pricing.Simple)
	assert.True(t, simple["price"])
	assert.False(t, simple["price_large"])
}
