// Package repositories holds the database access layer. Each repository
// wraps the orm query builder around one model.
package repositories

import (
	"errors"
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

// ErrStoreDivergence reports that the object store and the record store no
// longer agree: an item's image objects were removed but the record deletion
// failed afterwards. Callers must surface this loudly instead of retrying.
var ErrStoreDivergence = errors.New("object store and record store have diverged")

// Date buckets for the created_at listing filter.
const (
	DateAny   = "any"
	DateToday = "today"
	DateWeek  = "week"
	DateMonth = "month"
	DateYear  = "year"
)

// NewsFilter describes one listing query. Zero values mean "no filter";
// Page is 1-indexed and clamped to >= 1 by the pagination layer.
type NewsFilter struct {
	Page       int
	PageSize   int
	CategoryID string
	Status     string
	Search     string // case-insensitive substring over both titles
	DateBucket string // any | today | week | month | year
}

// NewsRepository handles database operations for News, including the
// image-then-record delete cascade.
type NewsRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNewsRepository() *NewsRepository {
	return &NewsRepository{db: database.DB, now: time.Now}
}

// NewNewsRepositoryWith builds a repository on an explicit connection.
// Tests use this with an in-memory sqlite handle and a fixed clock.
func NewNewsRepositoryWith(db *gorm.DB, now func() time.Time) *NewsRepository {
	if now == nil {
		now = time.Now
	}
	return &NewsRepository{db: db, now: now}
}

// Create persists a new item record.
func (r *NewsRepository) Create(item *models.News) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return orm.Use(r.db).Create(item)
}

// FindByID looks up an item by primary key.
func (r *NewsRepository) FindByID(id string) (models.News, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var item models.News
	err := orm.Use(r.db).Model(&models.News{}).Where("id = ?", id).First(&item)
	return item, err
}

// List returns one page of items matching every set filter (AND semantics),
// newest first.
func (r *NewsRepository) List(f NewsFilter) ([]models.News, orm.Pagination, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	if f.PageSize <= 0 {
		f.PageSize = config.NewsPageSize()
	}

	q := orm.Use(r.db).Model(&models.News{})

	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Status != "" && f.Status != models.StatusNone {
		q = q.Where("status = ?", f.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(title_primary) LIKE ? OR LOWER(title_secondary) LIKE ?", like, like)
	}
	if cutoff, ok := r.dateCutoff(f.DateBucket); ok {
		q = q.Where("created_at >= ?", cutoff)
	}

	var items []models.News
	pagination, err := q.Order("created_at DESC").GetWithPagination(&items, f.Page, f.PageSize)
	return items, pagination, err
}

// Count returns how many items match the filter, ignoring pagination.
func (r *NewsRepository) Count(f NewsFilter) (int64, error) {
	f.Page = 1
	if f.PageSize <= 0 {
		f.PageSize = config.NewsPageSize()
	}
	_, p, err := r.List(f)
	return p.Total, err
}

// Delete removes the item's image objects from the store and then the
// record. Ordering is deliberate: objects go first, and if any object
// removal fails the record stays untouched so the operation can be retried.
// If the record deletion fails after the objects are gone, the two stores
// disagree and the error wraps ErrStoreDivergence.
func (r *NewsRepository) Delete(id string) error {
	item, err := r.FindByID(id)
	if err != nil {
		return err
	}

	for _, url := range item.Images {
		key := objectKey(config.NewsMediaDir(), url)
		if key == "" {
			continue
		}
		if err := storage.Delete(key); err != nil {
			return fmt.Errorf("remove image object %s: %w", key, err)
		}
	}

	defer metrics.ObserveDBQuery("delete", time.Now())
	if err := orm.Use(r.db).Where("id = ?", id).Delete(&models.News{}); err != nil {
		return fmt.Errorf("delete record %s after image removal: %w: %v",
			id, ErrStoreDivergence, err)
	}
	return nil
}

func (r *NewsRepository) dateCutoff(bucket string) (time.Time, bool) {
	now := r.now()
	switch bucket {
	case DateToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case DateWeek:
		return now.AddDate(0, 0, -7), true
	case DateMonth:
		return now.AddDate(0, -1, 0), true
	case DateYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// objectKey derives the store key of an image from its public URL: the
// URL's last path segment inside the collection's media directory.
func objectKey(mediaDir, url string) string {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return mediaDir + "/" + trimmed[idx+1:]
}
