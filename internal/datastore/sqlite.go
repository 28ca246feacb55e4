package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
)

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the SQLite database connection and migrates the schema
func (store *SQLiteStore) Open() error {
	path := store.Settings.Database.SQLite.Path
	if path == "" {
		return validationError(errors.NewStd("sqlite path is empty"), "open")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.New(err).
				Component("datastore").
				Category(errors.CategoryFileIO).
				Context("operation", "open").
				Context("db_path", path).
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: createGormLogger(store.Settings.Debug)})
	if err != nil {
		return dbError(fmt.Errorf("failed to open SQLite database: %w", err), "open", errors.PriorityCritical, "db_path", path)
	}

	// SQLite serializes writers; a single connection also keeps :memory: databases coherent
	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open", errors.PriorityCritical, "db_path", path)
	}
	sqlDB.SetMaxOpenConns(1)

	store.DB = db
	GetLogger().Info("SQLite database opened", logger.String("path", path))

	return performAutoMigration(db, "SQLite")
}
