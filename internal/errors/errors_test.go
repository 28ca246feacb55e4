package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter captures reported errors
type recordingReporter struct {
	mu       sync.Mutex
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = append(r.reported, ee)
}

func (r *recordingReporter) IsEnabled() bool { return true }

func TestBuildDefaults(t *testing.T) {
	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestBuilderContext(t *testing.T) {
	base := fmt.Errorf("disk gone")
	ee := New(base).
		Component("importer").
		Category(CategoryFileIO).
		Priority("bogus").
		FileContext("data/meals.xlsx", 2048).
		Context("operation", "import_file").
		Build()

	assert.Equal(t, "importer", ee.Component)
	assert.Equal(t, PriorityMedium, ee.Priority, "unknown priority falls back to medium")

	ctx := ee.GetContext()
	assert.Equal(t, "data/meals.xlsx", ctx["file_path"])
	assert.Equal(t, int64(2048), ctx["file_size"])
	assert.Equal(t, "import_file", ctx["operation"])

	ctx["operation"] = "mutated"
	assert.Equal(t, "import_file", ee.GetContext()["operation"], "GetContext must return a copy")

	require.ErrorIs(t, ee, base)
}

func TestIsCategory(t *testing.T) {
	ee := Newf("row %d has no day", 4).Category(CategoryFileParsing).Build()
	wrapped := fmt.Errorf("import failed: %w", ee)

	assert.True(t, IsCategory(wrapped, CategoryFileParsing))
	assert.False(t, IsCategory(wrapped, CategoryDatabase))
	assert.False(t, IsCategory(fmt.Errorf("plain"), CategoryFileParsing))
	assert.True(t, IsNotFound(New(fmt.Errorf("x")).Category(CategoryNotFound).Build()))

	assert.True(t, Is(wrapped, &EnhancedError{Category: CategoryFileParsing}))
}

func TestValidationError(t *testing.T) {
	ee := ValidationError("day must be a positive integer")
	assert.Equal(t, CategoryValidation, ee.Category)
	assert.Equal(t, PriorityLow, ee.Priority)
}

func TestTelemetryReporterReceivesBuiltErrors(t *testing.T) {
	rec := &recordingReporter{}
	SetTelemetryReporter(rec)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	_ = New(fmt.Errorf("db locked")).Category(CategoryDatabase).Build()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.reported, 1)
	assert.Equal(t, CategoryDatabase, rec.reported[0].Category)
}

func TestSentryReporterDisabledIsNoop(t *testing.T) {
	sr := NewSentryReporter(false)
	ee := New(fmt.Errorf("x")).Build()

	sr.ReportError(ee)
	assert.False(t, ee.IsReported())
}
