package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/pkg/database"
	"github.com/matjarhq/matjar/pkg/metrics"
	"github.com/matjarhq/matjar/pkg/orm"
)

// GalleryRepository handles database operations for GalleryAlbum.
type GalleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository() *GalleryRepository {
	return &GalleryRepository{db: database.DB}
}

func NewGalleryRepositoryWith(db *gorm.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

// All returns every album, newest first.
func (r *GalleryRepository) All() ([]models.GalleryAlbum, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var albums []models.GalleryAlbum
	err := orm.Use(r.db).Model(&models.GalleryAlbum{}).Order("created_at DESC").Get(&albums)
	return albums, err
}

// Create persists a new album.
func (r *GalleryRepository) Create(album *models.GalleryAlbum) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return orm.Use(r.db).Create(album)
}
