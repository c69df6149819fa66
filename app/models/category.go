package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups catalog items. NameSecondary (the English name) decides
// which pricing fields items of the category carry.
type Category struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	NamePrimary   string    `gorm:"size:100;not null" json:"name_primary"`
	NameSecondary string    `gorm:"size:100;not null;index" json:"name_secondary"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
