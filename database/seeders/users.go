package seeders

import (
	"gorm.io/gorm"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/auth"
)

func init() {
	Register("admin-user", SeedAdminUser)
}

// SeedAdminUser creates the initial console operator. Credentials come
// from ADMIN_EMAIL / ADMIN_PASSWORD so deployments never ship a shared
// default. Skipped when the user already exists.
func SeedAdminUser(db *gorm.DB) error {
	email := config.Get("ADMIN_EMAIL", "admin@matjar.local")
	password := config.Get("ADMIN_PASSWORD", "change-me")

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Name:     "Administrator",
		Email:    email,
		Password: hashed,
	}).Error
}
