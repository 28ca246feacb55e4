// Package spreadsheet reads meal plan workbooks into datastore records.
//
// Only the first sheet of a workbook is read. Its first non-empty row is the
// header; columns are matched by name, case-insensitively, so column order in
// the sheet does not matter and missing optional columns yield nil values.
package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/errors"
)

// Sentinel errors
var (
	ErrEmptySheet       = errors.NewStd("spreadsheet contains no meal rows")
	ErrMissingDayColumn = errors.NewStd("spreadsheet has no Day column")
	ErrInvalidDay       = errors.NewStd("invalid day value")
	ErrInvalidWeek      = errors.NewStd("invalid week value")
)

// Sheet is the parsed content of a workbook's first sheet.
type Sheet struct {
	Name        string
	Records     []datastore.MealRecord // in source row order
	SkippedRows int                    // all-blank rows after the header
}

// ParseFile opens and parses the workbook at path.
func ParseFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("spreadsheet").
			Category(errors.CategoryFileIO).
			Context("file_path", path).
			Build()
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads an .xlsx workbook from r.
func Parse(r io.Reader) (*Sheet, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, parseError(fmt.Errorf("failed to open workbook: %w", err), 0)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseError(ErrEmptySheet, 0)
	}
	name := sheets[0]

	rows, err := wb.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, parseError(fmt.Errorf("failed to read sheet %q: %w", name, err), 0)
	}

	return parseRows(name, rows)
}

func parseRows(name string, rows [][]string) (*Sheet, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, parseError(ErrEmptySheet, 0)
	}

	cols, maxPosition, hasDay := resolveHeader(rows[headerIdx])
	if !hasDay {
		return nil, parseError(ErrMissingDayColumn, headerIdx+1)
	}

	sheet := &Sheet{Name: name}
	for i := headerIdx + 1; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			sheet.SkippedRows++
			continue
		}
		rec, err := buildRecord(rows[i], cols, maxPosition, i+1)
		if err != nil {
			return nil, err
		}
		sheet.Records = append(sheet.Records, rec)
	}

	if len(sheet.Records) == 0 {
		return nil, parseError(ErrEmptySheet, 0)
	}
	return sheet, nil
}

// buildRecord maps one data row to a MealRecord; rowNum is the 1-based sheet row.
func buildRecord(row []string, cols []column, maxPosition, rowNum int) (datastore.MealRecord, error) {
	var rec datastore.MealRecord
	alternates := make([]datastore.MealAlternate, maxPosition)

	for _, col := range cols {
		value := cellAt(row, col.index)

		switch col.field {
		case fieldDay:
			day, err := parseWholeNumber(value)
			if err != nil || day < 1 {
				return rec, parseError(fmt.Errorf("%w %q in row %d", ErrInvalidDay, value, rowNum), rowNum)
			}
			rec.Day = day
		case fieldWeek:
			if value == "" {
				continue
			}
			week, err := parseWholeNumber(value)
			if err != nil || week < 1 {
				return rec, parseError(fmt.Errorf("%w %q in row %d", ErrInvalidWeek, value, rowNum), rowNum)
			}
			rec.Week = &week
		case fieldMealType:
			rec.MealType = optional(value)
		case fieldPrimaryMeal:
			rec.PrimaryMeal = optional(value)
		case fieldPrimaryRecipe:
			rec.PrimaryRecipe = optional(value)
		case fieldAlternateMeal:
			alternates[col.position-1].Meal = optional(value)
		case fieldAlternateRecipe:
			alternates[col.position-1].Recipe = optional(value)
		}
	}

	for i, alt := range alternates {
		if alt.Meal == nil && alt.Recipe == nil {
			continue
		}
		alt.Position = i + 1
		rec.Alternates = append(rec.Alternates, alt)
	}

	return rec, nil
}

// parseWholeNumber accepts "3" as well as spreadsheet floats such as "3.0"
func parseWholeNumber(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%s is not a whole number", s)
	}
	return int(f), nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseError(err error, row int) error {
	b := errors.New(err).
		Component("spreadsheet").
		Category(errors.CategoryFileParsing).
		Priority(errors.PriorityLow)
	if row > 0 {
		b = b.Context("row", row)
	}
	return b.Build()
}
