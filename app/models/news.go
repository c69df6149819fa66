package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matjarhq/matjar/pkg/collection"
)

// Item statuses. An item carries at most one; "none" means unmarked.
const (
	StatusNone      = "none"
	StatusImportant = "important"
	StatusUrgent    = "urgent"
	StatusTrend     = "trend"
	StatusOffer     = "offer"
	StatusMostSold  = "most_sold"
)

// Statuses lists every valid item status.
var Statuses = []string{
	StatusNone, StatusImportant, StatusUrgent,
	StatusTrend, StatusOffer, StatusMostSold,
}

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	return collection.Contains(Statuses, func(known string) bool { return known == s })
}

// News is a sellable catalog item. The pricing columns are nullable; which
// of them carry values depends on the item's category (see app/pricing).
type News struct {
	ID               string      `gorm:"primaryKey;size:36" json:"id"`
	TitlePrimary     string      `gorm:"size:100;not null;index" json:"title_primary"`
	TitleSecondary   string      `gorm:"size:100;not null;index" json:"title_secondary"`
	ContentPrimary   string      `gorm:"type:text" json:"content_primary"`
	ContentSecondary string      `gorm:"type:text" json:"content_secondary"`
	CategoryID       string      `gorm:"size:36;not null;index" json:"category_id"`
	Category         *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Status           string      `gorm:"size:20;not null;default:none;index" json:"status"`
	Images           StringSlice `gorm:"type:text" json:"images"`
	VideoRef         string      `gorm:"size:500" json:"video_ref,omitempty"`
	Price            *float64    `json:"price,omitempty"`
	PriceMedium      *float64    `json:"price_medium,omitempty"`
	PriceLarge       *float64    `json:"price_large,omitempty"`
	PriceFamily      *float64    `json:"price_family,omitempty"`
	Offers           *float64    `json:"offers,omitempty"`
	OwnerID          string      `gorm:"size:36;not null;index" json:"owner_id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// BeforeCreate assigns a server-side uuid.
func (n *News) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = StatusNone
	}
	return nil
}

// PrimaryImage returns the first image URL, or "" for a record with no images.
func (n *News) PrimaryImage() string {
	if len(n.Images) == 0 {
		return ""
	}
	return n.Images[0]
}
