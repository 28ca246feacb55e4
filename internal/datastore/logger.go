// Package datastore provides logging infrastructure for database operations
package datastore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is logged as slow.
const DefaultSlowQueryThreshold = 500 * time.Millisecond

// GetLogger returns the datastore module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}

// GormLogger implements GORM's logger interface on top of the module logger
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
	log           logger.Logger
}

// NewGormLogger creates a new GORM logger instance
func NewGormLogger(slowThreshold time.Duration, logLevel gormlogger.LogLevel, log logger.Logger) *GormLogger {
	if log == nil {
		log = GetLogger()
	}
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      logLevel,
		log:           log.Module("gorm"),
	}
}

// createGormLogger configures the logger used by both backends
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return NewGormLogger(DefaultSlowQueryThreshold, level, nil)
}

// LogMode implements logger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info implements logger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		l.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements logger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		l.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements logger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		l.log.WithContext(ctx).Error("GORM error", logger.String("msg", fmt.Sprintf(msg, data...)))
	}
}

// Trace implements logger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	log := l.log.WithContext(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormlogger.Error:
		sql, rows := fc()
		log.Error("Database query failed",
			logger.Error(err),
			logger.String("sql", truncateSQL(sql)),
			logger.Duration("duration", elapsed),
			logger.Int64("rows_affected", rows))

	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		log.Warn("Slow query detected",
			logger.String("sql", truncateSQL(sql)),
			logger.Duration("duration", elapsed),
			logger.Duration("threshold", l.SlowThreshold),
			logger.Int64("rows_affected", rows))

	case l.LogLevel >= gormlogger.Info:
		sql, rows := fc()
		log.Debug("Query executed",
			logger.String("sql", truncateSQL(sql)),
			logger.Duration("duration", elapsed),
			logger.Int64("rows_affected", rows))
	}
}

// truncateSQL keeps bulk insert statements readable in the log
func truncateSQL(sql string) string {
	const maxLen = 512
	sql = strings.TrimSpace(sql)
	if len(sql) <= maxLen {
		return sql
	}
	return sql[:maxLen] + "..."
}
