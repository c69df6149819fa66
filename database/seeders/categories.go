package seeders

import (
	"gorm.io/gorm"

	"github.com/matjarhq/matjar/app/models"
)

func init() {
	Register("categories", SeedCategories)
}

// SeedCategories inserts the default menu categories. The secondary
// (English) name decides the pricing variant, so the spellings here
// matter. Idempotent: existing names are left alone.
func SeedCategories(db *gorm.DB) error {
	defaults := []models.Category{
		{NamePrimary: "كريب", NameSecondary: "Crepe"},
		{NamePrimary: "كريب بيتزا", NameSecondary: "Crepe Pizza"},
		{NamePrimary: "بيتزا", NameSecondary: "Pizza"},
		{NamePrimary: "سندوتشات", NameSecondary: "Sandwiches"},
		{NamePrimary: "مشروبات", NameSecondary: "Drinks"},
	}

	for _, c := range defaults {
		var count int64
		if err := db.Model(&models.Category{}).
			Where("name_secondary = ?", c.NameSecondary).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}
