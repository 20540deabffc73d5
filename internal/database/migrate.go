package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/models"
)

// Migrate creates or updates the live and retention tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.LiveModels()...); err != nil {
		return fmt.Errorf("failed to migrate live schema: %w", err)
	}
	if err := db.AutoMigrate(models.RetentionModels()...); err != nil {
		return fmt.Errorf("failed to migrate retention schema: %w", err)
	}
	return nil
}
