// meals.go: meal plan storage operations
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/observability/metrics"
)

const (
	mealsTable      = "meals"
	insertBatchSize = 100
)

// ReplaceMeals swaps the whole meal plan for records inside one transaction.
// An empty batch is refused with ErrEmptyBatch before anything is deleted,
// and readers never observe an empty table between the delete and the insert.
// The caller's slice is not modified.
func (ds *DataStore) ReplaceMeals(ctx context.Context, records []MealRecord) (count int, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpReplaceMeals, mealsTable, start, err) }()

	if err = ds.ensureOpen(metrics.OpReplaceMeals); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, validationError(ErrEmptyBatch, metrics.OpReplaceMeals)
	}

	batch := cloneForInsert(records)

	txErr := ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&MealAlternate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&MealRecord{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(batch, insertBatchSize).Error
	})
	if txErr != nil {
		if ds.metrics != nil {
			ds.metrics.RecordTransaction("rolled_back")
		}
		return 0, dbError(txErr, metrics.OpReplaceMeals, errors.PriorityHigh, "rows", len(batch))
	}

	if ds.metrics != nil {
		ds.metrics.RecordTransaction("committed")
		ds.metrics.UpdateTableRowCount(mealsTable, len(batch))
	}

	GetLogger().Info("Meal plan replaced",
		logger.Int("rows", len(batch)),
		logger.Duration("duration", time.Since(start)))

	return len(batch), nil
}

// GetMeals returns the meals of a day, optionally restricted to a week,
// in insertion order with alternates ordered by position.
func (ds *DataStore) GetMeals(ctx context.Context, filter MealFilter) (records []MealRecord, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpGetMeals, mealsTable, start, err) }()

	if err = ds.ensureOpen(metrics.OpGetMeals); err != nil {
		return nil, err
	}
	if filter.Day < 1 || (filter.Week != nil && *filter.Week < 1) {
		return nil, validationError(errors.NewStd("day and week must be positive integers"), metrics.OpGetMeals)
	}

	query := ds.withAlternates(ctx).Where("day = ?", filter.Day)
	if filter.Week != nil {
		query = query.Where("week = ?", *filter.Week)
	}

	records = []MealRecord{}
	if err = query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, dbError(err, metrics.OpGetMeals, errors.PriorityMedium, "day", filter.Day)
	}
	return records, nil
}

// AllMeals returns every stored meal record in insertion order.
func (ds *DataStore) AllMeals(ctx context.Context) (records []MealRecord, err error) {
	start := time.Now()
	defer func() { ds.observe("all_meals", mealsTable, start, err) }()

	if err = ds.ensureOpen("all_meals"); err != nil {
		return nil, err
	}

	records = []MealRecord{}
	if err = ds.withAlternates(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, dbError(err, "all_meals", errors.PriorityMedium)
	}
	return records, nil
}

// CountMeals returns the number of stored meal records.
func (ds *DataStore) CountMeals(ctx context.Context) (count int64, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpCountMeals, mealsTable, start, err) }()

	if err = ds.ensureOpen(metrics.OpCountMeals); err != nil {
		return 0, err
	}
	if err = ds.DB.WithContext(ctx).Model(&MealRecord{}).Count(&count).Error; err != nil {
		return 0, dbError(err, metrics.OpCountMeals, errors.PriorityMedium)
	}
	return count, nil
}

// HasData reports whether at least one meal record is stored.
func (ds *DataStore) HasData(ctx context.Context) (bool, error) {
	count, err := ds.CountMeals(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ds *DataStore) withAlternates(ctx context.Context) *gorm.DB {
	return ds.DB.WithContext(ctx).Preload("Alternates", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// cloneForInsert copies records with zeroed keys so gorm assigns fresh ones
func cloneForInsert(records []MealRecord) []MealRecord {
	batch := make([]MealRecord, len(records))
	for i := range records {
		batch[i] = records[i]
		batch[i].ID = 0
		if len(records[i].Alternates) == 0 {
			batch[i].Alternates = nil
			continue
		}
		batch[i].Alternates = make([]MealAlternate, len(records[i].Alternates))
		for j, alt := range records[i].Alternates {
			alt.ID = 0
			alt.MealRecordID = 0
			batch[i].Alternates[j] = alt
		}
	}
	return batch
}
