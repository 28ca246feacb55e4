// completed.go: day completion tracking
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/observability/metrics"
)

const completedTable = "completed_days"

// MarkDayComplete records day as completed. It returns false when the day
// was already marked, which is not an error.
func (ds *DataStore) MarkDayComplete(ctx context.Context, day int) (created bool, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpMarkComplete, completedTable, start, err) }()

	if err = ds.ensureOpen(metrics.OpMarkComplete); err != nil {
		return false, err
	}
	if day < 1 {
		return false, validationError(errors.NewStd("day must be a positive integer"), metrics.OpMarkComplete)
	}

	result := ds.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&CompletedDay{Day: day})
	if result.Error != nil {
		return false, dbError(result.Error, metrics.OpMarkComplete, errors.PriorityMedium, "day", day)
	}

	created = result.RowsAffected > 0
	GetLogger().Debug("Day marked complete",
		logger.Int("day", day),
		logger.Bool("already_completed", !created))

	return created, nil
}

// IsDayComplete reports whether day has been marked completed.
func (ds *DataStore) IsDayComplete(ctx context.Context, day int) (done bool, err error) {
	if err = ds.ensureOpen("is_day_complete"); err != nil {
		return false, err
	}

	var count int64
	if err = ds.DB.WithContext(ctx).Model(&CompletedDay{}).Where("day = ?", day).Count(&count).Error; err != nil {
		return false, dbError(err, "is_day_complete", errors.PriorityMedium, "day", day)
	}
	return count > 0, nil
}

// CompletedDays returns every completed day in ascending order.
func (ds *DataStore) CompletedDays(ctx context.Context) (days []int, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpCompletedDays, completedTable, start, err) }()

	if err = ds.ensureOpen(metrics.OpCompletedDays); err != nil {
		return nil, err
	}

	if err = ds.DB.WithContext(ctx).Model(&CompletedDay{}).Order("day ASC").Pluck("day", &days).Error; err != nil {
		return nil, dbError(err, metrics.OpCompletedDays, errors.PriorityMedium)
	}
	if days == nil {
		days = []int{}
	}
	return days, nil
}
