package datastore

import (
	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
	"gorm.io/gorm"
)

// performAutoMigration creates or updates the meals, meal_alternates and completed_days tables.
func performAutoMigration(db *gorm.DB, dbType string) error {
	if err := db.AutoMigrate(&MealRecord{}, &MealAlternate{}, &CompletedDay{}); err != nil {
		return dbError(err, "auto_migrate", errors.PriorityCritical, "db_type", dbType)
	}

	GetLogger().Debug("Database schema migrated", logger.String("db_type", dbType))
	return nil
}
