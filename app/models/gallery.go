package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GalleryAlbum is a titled set of showcase images.
type GalleryAlbum struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	TitlePrimary string      `gorm:"size:100;not null" json:"title_primary"`
	ImageURLs    StringSlice `gorm:"type:text" json:"image_urls"`
	OwnerID      string      `gorm:"size:36;not null;index" json:"owner_id"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (g *GalleryAlbum) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
