package database

import (
	"fmt"

	"github.com/kouk/grawity-code/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the utmp table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
