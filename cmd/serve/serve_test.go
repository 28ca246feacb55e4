package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mealplan/internal/api"
	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/testutil"
)

func newTestServer(t *testing.T, settings *conf.Settings) *api.Server {
	t.Helper()

	server, cleanup, err := newServer(t.Context(), settings)
	require.NoError(t, err)
	t.Cleanup(func() {
		server.Controller().Shutdown()
		cleanup()
	})
	return server
}

func get(t *testing.T, server *api.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return rec
}

func upload(t *testing.T, server *api.Server, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "plan.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestServerWithoutStartupImport(t *testing.T) {
	settings := testutil.TestSettings(t)
	settings.Import.Startup = conf.StartupImportNever
	testutil.WriteWorkbook(t, settings.Import.Path, testutil.MealRows("", 1)...)

	server := newTestServer(t, settings)

	rec := get(t, server, "/has_data")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[map[string]bool](t, rec)["has_data"], "startup policy never must not import")

	assert.Equal(t, http.StatusOK, get(t, server, "/health").Code)
}

func TestServerLoadsStartupImportAndFlushesCacheOnUpload(t *testing.T) {
	settings := testutil.TestSettings(t)
	settings.Import.Startup = conf.StartupImportAlways
	testutil.WriteWorkbook(t, settings.Import.Path, testutil.MealRows("Old ", 1, 2)...)

	server := newTestServer(t, settings)

	rec := get(t, server, "/meals/1")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.MealsResponse](t, rec)
	require.Len(t, resp.Meals, 1)
	assert.Equal(t, "Old Meal 1", *resp.Meals[0].PrimaryMeal)

	// the response is now cached; the import hook must drop it
	rec = upload(t, server, testutil.WorkbookBytes(t, testutil.MealRows("New ", 1)...))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp = decode[api.MealsResponse](t, get(t, server, "/meals/1"))
	require.Len(t, resp.Meals, 1)
	assert.Equal(t, "New Meal 1", *resp.Meals[0].PrimaryMeal)

	resp = decode[api.MealsResponse](t, get(t, server, "/meals/2"))
	assert.Empty(t, resp.Meals)
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	settings := testutil.TestSettings(t)
	settings.WebServer.Host = "127.0.0.1"
	settings.WebServer.Port = "0"
	settings.Import.Startup = conf.StartupImportNever

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, settings) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(testutil.DefaultTestTimeout):
		t.Fatal("Run did not return after the context was cancelled")
	}
}
