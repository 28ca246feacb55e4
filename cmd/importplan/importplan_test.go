package importplan

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/testutil"
)

func TestImportCommand(t *testing.T) {
	settings := testutil.TestSettings(t)
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "meals.db")

	source := filepath.Join(t.TempDir(), "week.xlsx")
	testutil.WriteWorkbook(t, source, testutil.MealRows("", 1, 2, 3)...)

	var out bytes.Buffer
	cmd := Command(settings)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{source})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Imported 3 meal rows from "+source)

	store := testutil.NewMemoryStore(t, settings)
	count, err := store.CountMeals(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "rows persist in the database file")
}

func TestImportCommandDefaultsToImportPath(t *testing.T) {
	settings := testutil.TestSettings(t)
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "meals.db")

	cmd := Command(settings)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err, "no spreadsheet at import.path")

	testutil.WriteWorkbook(t, settings.Import.Path, testutil.MealRows("", 1)...)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	store := testutil.NewMemoryStore(t, settings)
	meals, err := store.GetMeals(t.Context(), datastore.MealFilter{Day: 1})
	require.NoError(t, err)
	assert.Len(t, meals, 1)
}
