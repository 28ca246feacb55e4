// Package metrics provides custom Prometheus metrics for the meal plan server.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it instead of a concrete metrics struct so tests can
// pass a fake or nil-safe implementation.
type Recorder interface {
	// RecordOperation records an operation with its status, "success" or "error".
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}
