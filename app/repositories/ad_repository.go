package repositories

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/database"
	"github.com/matjarhq/matjar/pkg/metrics"
	"github.com/matjarhq/matjar/pkg/orm"
	"github.com/matjarhq/matjar/pkg/storage"
)

// AdFilter describes one ad listing query.
type AdFilter struct {
	Page     int
	PageSize int
	Search   string // case-insensitive substring over both titles
}

// AdRepository handles database operations for Ad, with the same
// image-then-record delete cascade as items.
type AdRepository struct {
	db *gorm.DB
}

func NewAdRepository() *AdRepository {
	return &AdRepository{db: database.DB}
}

func NewAdRepositoryWith(db *gorm.DB) *AdRepository {
	return &AdRepository{db: db}
}

// Create persists a new ad record.
func (r *AdRepository) Create(ad *models.Ad) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return orm.Use(r.db).Create(ad)
}

// Update persists changes to an existing ad.
func (r *AdRepository) Update(ad *models.Ad) error {
	defer metrics.ObserveDBQuery("update", time.Now())
	return orm.Use(r.db).Save(ad)
}

// FindByID looks up an ad by primary key.
func (r *AdRepository) FindByID(id string) (models.Ad, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var ad models.Ad
	err := orm.Use(r.db).Model(&models.Ad{}).Where("id = ?", id).First(&ad)
	return ad, err
}

// List returns one page of ads, newest first.
func (r *AdRepository) List(f AdFilter) ([]models.Ad, orm.Pagination, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	if f.PageSize <= 0 {
		f.PageSize = config.AdsPageSize()
	}

	q := orm.Use(r.db).Model(&models.Ad{})
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(title_primary) LIKE ? OR LOWER(title_secondary) LIKE ?", like, like)
	}

	var ads []models.Ad
	pagination, err := q.Order("created_at DESC").GetWithPagination(&ads, f.Page, f.PageSize)
	return ads, pagination, err
}

// Delete removes the ad's image object first, then the record. Object
// removal failure keeps the record so the operation can be retried; a record
// failure after removal wraps ErrStoreDivergence.
func (r *AdRepository) Delete(id string) error {
	ad, err := r.FindByID(id)
	if err != nil {
		return err
	}

	if key := objectKey(config.AdsMediaDir(), ad.ImageURL); key != "" {
		if err := storage.Delete(key); err != nil {
			return fmt.Errorf("remove image object %s: %w", key, err)
		}
	}

	defer metrics.ObserveDBQuery("delete", time.Now())
	if err := orm.Use(r.db).Where("id = ?", id).Delete(&models.Ad{}); err != nil {
		return fmt.Errorf("delete record %s after image removal: %w: %v",
			id, ErrStoreDivergence, err)
	}
	return nil
}
