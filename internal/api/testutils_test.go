package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/importer"
	"github.com/tphakala/mealplan/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// janitors of caches not yet garbage collected
		goleak.IgnoreAnyFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
		goleak.IgnoreAnyFunction("database/sql.(*DB).connectionOpener"),
	)
}

// MockDataStore implements datastore.Interface for testing
type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) Open() error                     { return m.Called().Error(0) }
func (m *MockDataStore) Close() error                    { return m.Called().Error(0) }
func (m *MockDataStore) SetMetrics(_ *datastore.Metrics) {}
func (m *MockDataStore) Ping(ctx context.Context) error  { return m.Called(ctx).Error(0) }

func (m *MockDataStore) HasData(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataStore) ReplaceMeals(ctx context.Context, records []datastore.MealRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

func (m *MockDataStore) GetMeals(ctx context.Context, filter datastore.MealFilter) ([]datastore.MealRecord, error) {
	args := m.Called(ctx, filter)
	records, _ := args.Get(0).([]datastore.MealRecord)
	return records, args.Error(1)
}

func (m *MockDataStore) CountMeals(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataStore) AllMeals(ctx context.Context) ([]datastore.MealRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]datastore.MealRecord)
	return records, args.Error(1)
}

func (m *MockDataStore) MarkDayComplete(ctx context.Context, day int) (bool, error) {
	args := m.Called(ctx, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataStore) IsDayComplete(ctx context.Context, day int) (bool, error) {
	args := m.Called(ctx, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataStore) CompletedDays(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	days, _ := args.Get(0).([]int)
	return days, args.Error(1)
}

// testEnv is an echo instance with all routes registered over a real
// in-memory datastore.
type testEnv struct {
	e          *echo.Echo
	controller *Controller
	store      datastore.Interface
	settings   *conf.Settings
}

// setupTestEnvironment wires the controller the way the serve command does:
// the importer flushes the shared meal cache after every import.
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()
	return setupTestEnvironmentWith(t, testutil.TestSettings(t))
}

func setupTestEnvironmentWith(t *testing.T, settings *conf.Settings) *testEnv {
	t.Helper()

	store := testutil.NewMemoryStore(t, settings)
	mealCache := NewMealCache(settings.WebServer.CacheTTL)
	imp := importer.New(store, settings,
		importer.WithImportHook(func(importer.Result) { mealCache.Flush() }))

	e := echo.New()
	controller, err := NewController(e, store, imp, settings, WithMealCache(mealCache))
	require.NoError(t, err)
	t.Cleanup(controller.Shutdown)

	return &testEnv{e: e, controller: controller, store: store, settings: settings}
}

// setupMockEnvironment returns a controller over a MockDataStore without routes.
func setupMockEnvironment(t *testing.T) (*echo.Echo, *MockDataStore, *Controller) {
	t.Helper()

	settings := testutil.TestSettings(t)
	mockDS := new(MockDataStore)
	imp := importer.New(mockDS, settings)

	e := echo.New()
	controller, err := NewControllerWithOptions(e, mockDS, imp, settings, false)
	require.NoError(t, err)
	t.Cleanup(controller.Shutdown)

	return e, mockDS, controller
}

// do sends req through the full echo router.
func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(path string) *httptest.ResponseRecorder {
	return env.do(httptest.NewRequest(http.MethodGet, path, http.NoBody))
}

func (env *testEnv) post(path string) *httptest.ResponseRecorder {
	return env.do(httptest.NewRequest(http.MethodPost, path, http.NoBody))
}

func (env *testEnv) upload(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	return env.do(uploadRequest(t, filename, content))
}

// uploadRequest builds a multipart POST /upload carrying content as the file part.
func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(uploadFormField, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
