package spreadsheet

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tphakala/mealplan/internal/errors"
)

// buildWorkbook writes rows starting at A1 of the first sheet
func buildWorkbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var legacyHeader = []any{"Day", "Meal Type", "Primary Meal", "Primary Recipe",
	"Alternate Meal", "Alternate Recipe", "Third Meal Option", "Third Meal Recipe"}

func TestParseLegacyColumns(t *testing.T) {
	t.Parallel()

	buf := buildWorkbook(t,
		legacyHeader,
		[]any{1, "Dinner", "Pasta", "Boil water", "Soup", "Heat soup", "Salad", ""},
		[]any{2, "Lunch", "Tacos", "", "", "", "", ""},
	)

	sheet, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Records, 2)

	first := sheet.Records[0]
	assert.Equal(t, 1, first.Day)
	assert.Nil(t, first.Week)
	assert.Equal(t, "Dinner", *first.MealType)
	assert.Equal(t, "Pasta", *first.PrimaryMeal)
	require.Len(t, first.Alternates, 2)
	assert.Equal(t, 1, first.Alternates[0].Position)
	assert.Equal(t, "Soup", *first.Alternates[0].Meal)
	assert.Equal(t, 2, first.Alternates[1].Position)
	assert.Equal(t, "Salad", *first.Alternates[1].Meal)
	assert.Nil(t, first.Alternates[1].Recipe)

	second := sheet.Records[1]
	assert.Nil(t, second.PrimaryRecipe)
	assert.Empty(t, second.Alternates)
}

func TestParseNumberedAlternatesWeekAndOrder(t *testing.T) {
	t.Parallel()

	buf := buildWorkbook(t,
		[]any{"primary meal", " WEEK ", "day", "Alternate Meal 3", "Alternate Recipe 3", "Notes"},
		[]any{"Curry", 2, 4, "Rice bowl", "Cook rice", "ignored"},
	)

	sheet, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Records, 1)

	rec := sheet.Records[0]
	assert.Equal(t, 4, rec.Day)
	require.NotNil(t, rec.Week)
	assert.Equal(t, 2, *rec.Week)
	assert.Nil(t, rec.MealType, "missing column yields nil")
	require.Len(t, rec.Alternates, 1)
	assert.Equal(t, 3, rec.Alternates[0].Position)
	assert.Equal(t, "Cook rice", *rec.Alternates[0].Recipe)
}

func TestParseSkipsBlankRowsAndLeadingRows(t *testing.T) {
	t.Parallel()

	buf := buildWorkbook(t,
		[]any{},
		[]any{"Day", "Primary Meal"},
		[]any{1, "A"},
		[]any{"", "  "},
		[]any{2.0, "B"},
	)

	sheet, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Records, 2)
	assert.Equal(t, 2, sheet.Records[1].Day, "2.0 is accepted as 2")
	assert.Equal(t, 1, sheet.SkippedRows)
}

func TestParseDayFromSheetNotPosition(t *testing.T) {
	t.Parallel()

	buf := buildWorkbook(t,
		[]any{"Day", "Primary Meal"},
		[]any{7, "Last"},
		[]any{3, "Middle"},
	)

	sheet, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, 7, sheet.Records[0].Day)
	assert.Equal(t, 3, sheet.Records[1].Day)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rows    [][]any
		wantErr error
		wantRow int
	}{
		{"header only", [][]any{{"Day", "Primary Meal"}}, ErrEmptySheet, 0},
		{"no rows at all", nil, ErrEmptySheet, 0},
		{"missing day column", [][]any{{"Primary Meal"}, {"Pasta"}}, ErrMissingDayColumn, 1},
		{"blank day", [][]any{{"Day", "Primary Meal"}, {1, "A"}, {"", "B"}}, ErrInvalidDay, 3},
		{"text day", [][]any{{"Day"}, {"Monday"}}, ErrInvalidDay, 2},
		{"fractional day", [][]any{{"Day"}, {1.5}}, ErrInvalidDay, 2},
		{"zero day", [][]any{{"Day"}, {0}}, ErrInvalidDay, 2},
		{"bad week", [][]any{{"Day", "Week"}, {1, "first"}}, ErrInvalidWeek, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(buildWorkbook(t, tt.rows...))
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))

			var ee *errors.EnhancedError
			require.True(t, errors.As(err, &ee))
			if tt.wantRow > 0 {
				assert.Equal(t, tt.wantRow, ee.GetContext()["row"])
			}
		})
	}
}

func TestParseRejectsNonWorkbook(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("Day,Meal\n1,Pasta\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Day", "Primary Meal"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "Pasta"}))

	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, f.SaveAs(path))

	sheet, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", sheet.Name)
	assert.Len(t, sheet.Records, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestClassifyHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header  string
		wantF   field
		wantPos int
	}{
		{"Day", fieldDay, 0},
		{"  meal   TYPE ", fieldMealType, 0},
		{"Alternate Meal", fieldAlternateMeal, 1},
		{"Third Meal Recipe", fieldAlternateRecipe, 2},
		{"Alternate Recipe 12", fieldAlternateRecipe, 12},
		{"Alternate Meal 0", fieldUnknown, 0},
		{"Calories", fieldUnknown, 0},
		{"Primary\u00a0Meal", fieldPrimaryMeal, 0},
		{"\uff24\uff41\uff59", fieldDay, 0}, // full-width "Day"
		{"WEEK", fieldWeek, 0},
	}
	for _, tt := range tests {
		f, pos := classifyHeader(tt.header)
		assert.Equal(t, tt.wantF, f, tt.header)
		assert.Equal(t, tt.wantPos, pos, tt.header)
	}
}
