package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/datastore"
)

// MealHeader is the legacy column layout of a meal plan sheet.
var MealHeader = []any{"Day", "Meal Type", "Primary Meal", "Primary Recipe",
	"Alternate Meal", "Alternate Recipe", "Third Meal Option", "Third Meal Recipe"}

// MealRows returns a header row followed by one row per day. The primary
// meal of day d is "Meal d" prefixed with label.
func MealRows(label string, days ...int) [][]any {
	rows := [][]any{MealHeader}
	for _, d := range days {
		rows = append(rows, []any{
			d, "Dinner",
			fmt.Sprintf("%sMeal %d", label, d), "Cook it",
			fmt.Sprintf("Alt %d", d), "Alt recipe",
			"", "",
		})
	}
	return rows
}

// WorkbookBytes renders rows into the first sheet of a new workbook.
func WorkbookBytes(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// WriteWorkbook writes rows as an .xlsx file at path, creating parent directories.
func WriteWorkbook(t *testing.T, path string, rows ...[]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, WorkbookBytes(t, rows...), 0o600))
}

// TestSettings returns valid settings rooted in a temporary directory.
func TestSettings(t *testing.T) *conf.Settings {
	t.Helper()
	dir := t.TempDir()

	return &conf.Settings{
		WebServer: conf.WebServerSettings{Port: "5000", DebugRoutes: true, UploadLimit: "10M"},
		Database: conf.DatabaseSettings{
			Type:   conf.DatabaseSQLite,
			SQLite: conf.SQLiteSettings{Path: ":memory:"},
		},
		Import: conf.ImportSettings{
			Path:    filepath.Join(dir, "data", "meal_plan.xlsx"),
			Startup: conf.StartupImportAlways,
		},
		Images: conf.ImageSettings{
			Enabled:     true,
			URLTemplate: "https://picsum.photos/seed/meal-%d/400/300",
		},
	}
}

// NewMemoryStore opens an in-memory SQLite datastore closed at test cleanup.
func NewMemoryStore(t *testing.T, settings *conf.Settings) datastore.Interface {
	t.Helper()

	store := datastore.New(settings)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}
