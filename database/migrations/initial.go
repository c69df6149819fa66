package migrations

import (
	"gorm.io/gorm"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260301000001_create_categories_table", &CreateCategoriesTable{})
	migration.Register("20260301000002_create_news_table", &CreateNewsTable{})
	migration.Register("20260301000003_create_ads_table", &CreateAdsTable{})
	migration.Register("20260301000004_create_gallery_albums_table", &CreateGalleryAlbumsTable{})
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: categories --------

type CreateCategoriesTable struct{}

func (m *CreateCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *CreateCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

// -------- 0003: news --------

type CreateNewsTable struct{}

func (m *CreateNewsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.News{})
}

func (m *CreateNewsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("news")
}

// -------- 0004: ads --------

type CreateAdsTable struct{}

func (m *CreateAdsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Ad{})
}

func (m *CreateAdsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("ads")
}

// -------- 0005: gallery albums --------

type CreateGalleryAlbumsTable struct{}

func (m *CreateGalleryAlbumsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.GalleryAlbum{})
}

func (m *CreateGalleryAlbumsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("gallery_albums")
}
