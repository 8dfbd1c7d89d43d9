package repository

import (
	"fmt"

	"aloka/internal/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the studio and user tables. On PostgreSQL it
// also builds the full-text index over name, description and city.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Studio{}, &userModel{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		stmt := "CREATE INDEX IF NOT EXISTS idx_studios_text ON studios USING GIN (" + studioTextVector + ")"
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create text index: %w", err)
		}
	}
	return nil
}
