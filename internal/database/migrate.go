package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipecrafter/backend/internal/models"
)

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.PantryItem{},
	}
}

// RunMigrations brings the schema up to date
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running auto-migration", zap.String("dialect", db.Dialector.Name()))
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
