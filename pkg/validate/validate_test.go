package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matjarhq/matjar/pkg/validate"
)

type itemInput struct {
	TitlePrimary string `json:"title_primary" validate:"required,max=100"`
	CategoryID   string `json:"category_id"   validate:"required,uuid"`
	Price        string `json:"price"         validate:"nullable,numeric"`
	Status       string `json:"status"        validate:"nullable,in=none,important,urgent,trend,offer,most_sold"`
	Email        string `json:"email"         validate:"nullable,email"`
}

func TestStruct_Valid(t *testing.T) {
	errs := validate.Struct(itemInput{
		TitlePrimary: "Margherita",
		CategoryID:   "2b1c8a30-8d14-4c5a-9d9e-5f3a1a2b3c4d",
		Price:        "12.5",
		Status:       "trend",
	})
	assert.Empty(t, errs)
}

func TestStruct_Required(t *testing.T) {
	errs := validate.Struct(itemInput{CategoryID: "2b1c8a30-8d14-4c5a-9d9e-5f3a1a2b3c4d"})
	assert.Contains(t, errs, "title_primary")
	assert.Equal(t, "The title_primary field is required.", errs["title_primary"])
}

func TestStruct_NullableSkipsEmpty(t *testing.T) {
	errs := validate.Struct(itemInput{
		TitlePrimary: "Shawarma",
		CategoryID:   "2b1c8a30-8d14-4c5a-9d9e-5f3a1a2b3c4d",
		Price:        "", // nullable — no numeric check
	})
	assert.NotContains(t, errs, "price")
}

func TestStruct_NumericRejectsText(t *testing.T) {
	errs := validate.Struct(itemInput{
		TitlePrimary: "Shawarma",
		CategoryID:   "2b1c8a30-8d14-4c5a-9d9e-5f3a1a2b3c4d",
		Price:        "twelve",
	})
	assert.Equal(t, "The price must be a number.", errs["price"])
}

func TestStruct_InRule(t *testing.T) {
	errs := validate.Struct(itemInput{
		TitlePrimary: "Shawarma",
		CategoryID:   "2b1c8a30-8d14-4c5a-9d9e-5f3a1a2b3c4d",
		Status:       "bogus",
	})
	assert.Equal(t, "The selected status is invalid.", errs["status"])
}

func TestStruct_MaxLength(t *testing.T) {
	long := make([]rune, 101)
	for i := range long {
		long[i] = 'a'
	}
	errs := validate.Struct(itemInput{
		TitlePrimary: string(long),
		CategoryID:   "2b1c8a30-8d14-4c5a-9d9e-5f3a1a2b3c4d",
	})
	assert.Contains(t, errs, "title_primary")
}

func TestStruct_UUID(t *testing.T) {
	errs := validate.Struct(itemInput{
		TitlePrimary: "Shawarma",
		CategoryID:   "not-a-uuid",
	})
	assert.Equal(t, "The category_id must be a valid UUID.", errs["category_id"])
}
