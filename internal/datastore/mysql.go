package datastore

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

// dsn builds the go-sql-driver connection string
func (store *MySQLStore) dsn() string {
	cfg := store.Settings.Database.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
}

// Open sets up the MySQL database connection and migrates the schema
func (store *MySQLStore) Open() error {
	cfg := store.Settings.Database.MySQL
	log := GetLogger().Module("mysql")

	db, err := gorm.Open(mysql.Open(store.dsn()), &gorm.Config{Logger: createGormLogger(store.Settings.Debug)})
	if err != nil {
		log.Error("Failed to open MySQL database",
			logger.String("host", cfg.Host),
			logger.String("port", cfg.Port),
			logger.String("database", cfg.Database),
			logger.Error(err))
		return dbError(fmt.Errorf("failed to open MySQL database: %w", err), "open", errors.PriorityCritical,
			"host", cfg.Host, "database", cfg.Database)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open", errors.PriorityCritical)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	store.DB = db
	log.Info("MySQL database opened",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Database))

	return performAutoMigration(db, "MySQL")
}
