package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Recorder = (*ImporterMetrics)(nil)

func TestDatastoreMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewDatastoreMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordDbOperation(OpReplaceMeals, "meals", StatusSuccess)
	m.RecordDbOperation(OpReplaceMeals, "meals", StatusSuccess)
	m.RecordDbOperationError(OpGetMeals, "meals", "locked")
	m.RecordTransaction("committed")
	m.UpdateTableRowCount("meals", 14)

	assert.InDelta(t, 2, testutil.ToFloat64(m.dbOperationsTotal.WithLabelValues(OpReplaceMeals, "meals", StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dbOperationErrorsTotal.WithLabelValues(OpGetMeals, "meals", "locked")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dbTransactionsTotal.WithLabelValues("committed")), 0)
	assert.InDelta(t, 14, testutil.ToFloat64(m.dbTableRowCountGauge.WithLabelValues("meals")), 0)
}

func TestImporterMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewImporterMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordOperation(OpImportUpload, StatusError)
	m.RecordError(OpImportUpload, "file-parsing")
	m.RecordDuration(OpImportUpload, 0.2)
	assert.True(t, m.LastImportTime().IsZero())
	m.RecordImportedRows(21, 1_700_000_000)

	assert.InDelta(t, 1, testutil.ToFloat64(m.importsTotal.WithLabelValues(OpImportUpload, StatusError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.importErrorsTotal.WithLabelValues(OpImportUpload, "file-parsing")), 0)
	assert.InDelta(t, 1_700_000_000, testutil.ToFloat64(m.lastImportTime), 0)
	assert.Equal(t, time.Unix(1_700_000_000, 0), m.LastImportTime())
}

func TestHTTPMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordHTTPRequest("GET", "/meals/:day", "200", 0.01)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/meals/:day", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("miss")), 0)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewHTTPMetrics(registry)
	require.NoError(t, err)

	_, err = NewHTTPMetrics(registry)
	assert.Error(t, err)
}
