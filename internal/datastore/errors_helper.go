// Package datastore provides error handling helpers for database operations
package datastore

import (
	"strings"

	"github.com/tphakala/mealplan/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a validation error for caller mistakes
func validationError(err error, operation string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryValidation).
		Priority(errors.PriorityLow).
		Context("operation", operation).
		Build()
}

// categorizeError maps a driver error to a short metric label
func categorizeError(err error) string {
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "locked") || strings.Contains(errStr, "busy"):
		return "locked"
	case strings.Contains(errStr, "constraint") || strings.Contains(errStr, "duplicate"):
		return "constraint"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "canceled"):
		return "canceled"
	case strings.Contains(errStr, "no such table") || strings.Contains(errStr, "doesn't exist"):
		return "schema"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "not initialized"):
		return "connection"
	case strings.Contains(errStr, "empty batch"):
		return "validation"
	default:
		return "other"
	}
}
