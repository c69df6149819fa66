package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ad is a promotional banner with a single image.
type Ad struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	TitlePrimary   string    `gorm:"size:100;not null;index" json:"title_primary"`
	TitleSecondary string    `gorm:"size:100;not null;index" json:"title_secondary"`
	ImageURL       string    `gorm:"size:500;not null" json:"image_url"`
	Link           string    `gorm:"size:500" json:"link,omitempty"`
	OwnerID        string    `gorm:"size:36;not null;index" json:"owner_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a *Ad) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
