// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/errors"
)

// ErrEmptyBatch is returned when ReplaceMeals is handed no rows. Nothing is deleted.
var ErrEmptyBatch = errors.NewStd("refusing to replace meals with an empty batch")

// Interface abstracts the underlying database implementation and defines the interface for database operations.
type Interface interface {
	Open() error
	Close() error
	SetMetrics(m *Metrics)
	Ping(ctx context.Context) error

	// meal plan, written only by the importer
	ReplaceMeals(ctx context.Context, records []MealRecord) (int, error)
	GetMeals(ctx context.Context, filter MealFilter) ([]MealRecord, error)
	CountMeals(ctx context.Context) (int64, error)
	HasData(ctx context.Context) (bool, error)
	AllMeals(ctx context.Context) ([]MealRecord, error)

	// completion tracking
	MarkDayComplete(ctx context.Context, day int) (bool, error)
	IsDayComplete(ctx context.Context, day int) (bool, error)
	CompletedDays(ctx context.Context) ([]int, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB      *gorm.DB // GORM database instance
	metrics *Metrics
}

// New creates a new store for the backend selected in settings.
func New(settings *conf.Settings) Interface {
	switch settings.Database.Type {
	case conf.DatabaseMySQL:
		return &MySQLStore{Settings: settings}
	default:
		return &SQLiteStore{Settings: settings}
	}
}

// SetMetrics attaches Prometheus metrics to the store
func (ds *DataStore) SetMetrics(m *Metrics) {
	ds.metrics = m
}

// Ping checks that the database connection is alive.
func (ds *DataStore) Ping(ctx context.Context) error {
	if ds.DB == nil {
		return dbError(errors.NewStd("database connection is not initialized"), "ping", errors.PriorityHigh)
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "ping", errors.PriorityHigh)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError(err, "ping", errors.PriorityHigh)
	}
	return nil
}

// Close closes the underlying connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close", errors.PriorityMedium)
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", errors.PriorityMedium)
	}
	return nil
}

// ensureOpen guards operations against an unopened store
func (ds *DataStore) ensureOpen(operation string) error {
	if ds.DB == nil {
		return dbError(errors.NewStd("database connection is not initialized"), operation, errors.PriorityHigh)
	}
	return nil
}

// observe records operation metrics when metrics are attached
func (ds *DataStore) observe(operation, table string, start time.Time, err error) {
	if ds.metrics == nil {
		return
	}
	ds.metrics.RecordDbOperationDuration(operation, table, time.Since(start).Seconds())
	if err != nil {
		ds.metrics.RecordDbOperation(operation, table, "error")
		ds.metrics.RecordDbOperationError(operation, table, categorizeError(err))
		return
	}
	ds.metrics.RecordDbOperation(operation, table, "success")
}
