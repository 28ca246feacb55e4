// Package importer loads meal plan spreadsheets into the datastore.
//
// A spreadsheet reaches the store either from the well-known path configured
// as import.path, at startup or from the CLI, or as an uploaded file. Either
// way the sheet is parsed completely before the stored plan is swapped, so a
// bad file never destroys existing data. Imports are serialized.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/observability/metrics"
	"github.com/tphakala/mealplan/internal/spreadsheet"
)

// Sentinel errors
var (
	ErrSourceMissing    = errors.NewStd("spreadsheet source file does not exist")
	ErrInvalidExtension = errors.NewStd("invalid file format, expected an .xlsx file")
)

// Result describes a successful import.
type Result struct {
	ImportID string        `json:"import_id"`
	Rows     int           `json:"rows"`
	Source   string        `json:"source"`
	Duration time.Duration `json:"duration"`
}

// rowsRecorder is implemented by metrics.ImporterMetrics
type rowsRecorder interface {
	RecordImportedRows(rows int, unixSeconds int64)
}

// Importer parses spreadsheets and replaces the stored meal plan.
type Importer struct {
	store    datastore.Interface
	settings *conf.Settings
	log      logger.Logger
	metrics  metrics.Recorder
	hooks    []func(Result)

	mu sync.Mutex // serializes imports
}

// Option configures an Importer
type Option func(*Importer)

// WithLogger overrides the module logger
func WithLogger(l logger.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.log = l
		}
	}
}

// WithMetrics attaches a metrics recorder
func WithMetrics(m metrics.Recorder) Option {
	return func(i *Importer) {
		i.metrics = m
	}
}

// WithImportHook registers fn to run after every successful import,
// e.g. to invalidate cached query results.
func WithImportHook(fn func(Result)) Option {
	return func(i *Importer) {
		if fn != nil {
			i.hooks = append(i.hooks, fn)
		}
	}
}

// New creates an Importer writing into store.
func New(store datastore.Interface, settings *conf.Settings, opts ...Option) *Importer {
	i := &Importer{
		store:    store,
		settings: settings,
		log:      logger.Global().Module("importer"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Path returns the well-known spreadsheet path.
func (i *Importer) Path() string {
	return i.settings.Import.Path
}

// IsBadInput reports whether err was caused by the submitted file rather than
// by the server, i.e. whether a client should see it as a 400.
func IsBadInput(err error) bool {
	return errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, spreadsheet.ErrEmptySheet) ||
		errors.Is(err, spreadsheet.ErrMissingDayColumn)
}

// ImportFile imports the spreadsheet at path, or at the well-known path when
// path is empty. A missing file returns ErrSourceMissing without touching the store.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		path = i.Path()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			i.log.Warn("Spreadsheet not found, nothing imported", logger.String("path", path))
			i.recordFailure(metrics.OpImportFile, errors.CategoryNotFound)
			return nil, errors.New(fmt.Errorf("%w: %s", ErrSourceMissing, path)).
				Component("importer").
				Category(errors.CategoryNotFound).
				Context("file_path", path).
				Build()
		}
		i.recordFailure(metrics.OpImportFile, errors.CategoryFileIO)
		return nil, errors.New(err).
			Component("importer").
			Category(errors.CategoryFileIO).
			Context("file_path", path).
			Build()
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	return i.run(ctx, metrics.OpImportFile, path, path)
}

// ImportUpload imports an uploaded spreadsheet. The payload is written beside
// the well-known path, stored, and only then renamed over the well-known path
// so that a restart reloads the same plan.
func (i *Importer) ImportUpload(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		i.log.Info("Rejected upload with invalid extension", logger.String("filename", filename))
		i.recordFailure(metrics.OpImportUpload, errors.CategoryValidation)
		return nil, errors.New(ErrInvalidExtension).
			Component("importer").
			Category(errors.CategoryValidation).
			Priority(errors.PriorityLow).
			Context("filename", filename).
			Build()
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	target := i.Path()
	tmpPath, size, err := spool(target, r)
	if err != nil {
		i.recordFailure(metrics.OpImportUpload, errors.CategoryFileIO)
		return nil, errors.New(err).
			Component("importer").
			Category(errors.CategoryFileIO).
			Context("file_path", target).
			Build()
	}
	defer os.Remove(tmpPath) // no-op once renamed

	i.log.Debug("Upload spooled",
		logger.String("filename", filename),
		logger.String("tmp_path", tmpPath),
		logger.Int64("size", size))

	result, err := i.run(ctx, metrics.OpImportUpload, tmpPath, filename)
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmpPath, target); err != nil {
		i.log.Error("Stored uploaded plan but failed to replace spreadsheet file",
			logger.String("path", target),
			logger.Error(err))
		i.recordFailure(metrics.OpImportUpload, errors.CategoryFileIO)
		return nil, errors.New(err).
			Component("importer").
			Category(errors.CategoryFileIO).
			FileContext(target, size).
			Context("import_id", result.ImportID).
			Build()
	}

	return result, nil
}

// run parses path and swaps its rows into the store. Callers hold i.mu.
func (i *Importer) run(ctx context.Context, op, path, source string) (*Result, error) {
	start := time.Now()
	importID := uuid.NewString()
	log := i.log.WithContext(ctx).With(
		logger.String("import_id", importID),
		logger.String("source", source))

	sheet, err := spreadsheet.ParseFile(path)
	if err != nil {
		switch {
		case errors.Is(err, spreadsheet.ErrEmptySheet):
			log.Warn("Spreadsheet has no meal rows, stored plan left unchanged")
		default:
			log.Error("Failed to parse spreadsheet", logger.Error(err))
		}
		i.recordFailure(op, categoryOf(err))
		return nil, err
	}

	for idx := range sheet.Records {
		rec := &sheet.Records[idx]
		fields := []logger.Field{
			logger.Int("day", rec.Day),
			logger.Int("alternates", len(rec.Alternates)),
		}
		if rec.Week != nil {
			fields = append(fields, logger.Int("week", *rec.Week))
		}
		log.Debug("Parsed meal row", fields...)
	}

	rows, err := i.store.ReplaceMeals(ctx, sheet.Records)
	if err != nil {
		log.Error("Failed to store meal plan", logger.Error(err))
		i.recordFailure(op, categoryOf(err))
		return nil, errors.New(err).
			Component("importer").
			Category(errors.CategoryProcessing).
			Context("import_id", importID).
			Context("source", source).
			Build()
	}

	result := Result{
		ImportID: importID,
		Rows:     rows,
		Source:   source,
		Duration: time.Since(start),
	}

	log.Info("Meal plan imported",
		logger.String("sheet", sheet.Name),
		logger.Int("rows", rows),
		logger.Int("skipped_rows", sheet.SkippedRows),
		logger.Duration("duration", result.Duration))

	if i.metrics != nil {
		i.metrics.RecordOperation(op, metrics.StatusSuccess)
		i.metrics.RecordDuration(op, result.Duration.Seconds())
		if rr, ok := i.metrics.(rowsRecorder); ok {
			rr.RecordImportedRows(rows, time.Now().Unix())
		}
	}

	for _, hook := range i.hooks {
		hook(result)
	}

	return &result, nil
}

func (i *Importer) recordFailure(op string, category errors.ErrorCategory) {
	if i.metrics == nil {
		return
	}
	i.metrics.RecordOperation(op, metrics.StatusError)
	i.metrics.RecordError(op, string(category))
}

// spool copies r into a temp file in the directory of target
func spool(target string, r io.Reader) (path string, size int64, err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create import directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*.xlsx")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	size, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}

	return tmp.Name(), size, nil
}

func categoryOf(err error) errors.ErrorCategory {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return errors.CategoryGeneric
}
