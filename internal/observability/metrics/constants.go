// Package metrics provides constants used across metric definitions.
package metrics

// Operation status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation label values shared by the datastore and importer metrics.
const (
	// OpReplaceMeals represents the meal table swap.
	OpReplaceMeals = "replace_meals"
	// OpGetMeals represents a filtered meal query.
	OpGetMeals = "get_meals"
	// OpCountMeals represents a meal count query.
	OpCountMeals = "count_meals"
	// OpMarkComplete represents marking a day completed.
	OpMarkComplete = "mark_complete"
	// OpCompletedDays represents listing completed days.
	OpCompletedDays = "completed_days"
	// OpImportFile represents an import from the well-known path.
	OpImportFile = "import_file"
	// OpImportUpload represents an import from an uploaded file.
	OpImportUpload = "import_upload"
	// OpParse represents spreadsheet parsing.
	OpParse = "parse"
)

// Histogram bucket layout constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketStart10ms is the starting bucket for 10ms histograms.
	BucketStart10ms = 0.01
	// BucketStart1 is the starting bucket for row count histograms.
	BucketStart1 = 1.0
	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)
