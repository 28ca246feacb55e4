// Package datastore provides type aliases and integration with the observability metrics package
package datastore

import (
	"github.com/tphakala/mealplan/internal/observability/metrics"
)

// Metrics is a type alias for the metrics.DatastoreMetrics
type Metrics = metrics.DatastoreMetrics
