package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/pkg/database"
	"github.com/matjarhq/matjar/pkg/metrics"
	"github.com/matjarhq/matjar/pkg/orm"
)

// CategoryRepository handles database operations for Category.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{db: database.DB}
}

func NewCategoryRepositoryWith(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// All returns every category, oldest first.
func (r *CategoryRepository) All() ([]models.Category, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var categories []models.Category
	err := orm.Use(r.db).Model(&models.Category{}).Order("created_at ASC").Get(&categories)
	return categories, err
}

// FindByID looks up a category by primary key.
func (r *CategoryRepository) FindByID(id string) (models.Category, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var category models.Category
	err := orm.Use(r.db).Model(&models.Category{}).Where("id = ?", id).First(&category)
	return category, err
}

// Create persists a new category.
func (r *CategoryRepository) Create(category *models.Category) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return orm.Use(r.db).Create(category)
}
