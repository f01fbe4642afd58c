package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	domain "github.com/example/task-service/domain/task"
	"github.com/example/task-service/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }

// failingPort fails every call with a store error.
type failingPort struct {
	task.TaskPort
	err error
}

func (p failingPort) ListTasks(context.Context, domain.Filter) ([]domain.Task, error) {
	return nil, p.err
}

func (p failingPort) Stats(context.Context) (*domain.Stats, error) {
	return nil, p.err
}

func (p failingPort) Categories(context.Context) ([]string, error) {
	return nil, p.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Task{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// setupApp builds the Fiber app over a real task service.
func setupApp(t *testing.T, cfg Config) *fiber.App {
	t.Helper()
	m := NewModule(cfg, &mockLogger{})
	m.taskPort = task.NewService(setupTestDB(t), nil, &mockLogger{})
	return m.newApp()
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return resp.StatusCode, out
}

func createTask(t *testing.T, app *fiber.App, body string) map[string]any {
	t.Helper()
	status, out := doRequest(t, app, http.MethodPost, "/tasks", body)
	require.Equal(t, http.StatusCreated, status, "body: %v", out)
	return out["task"].(map[string]any)
}

func TestAPI_CreateAndGet(t *testing.T) {
	app := setupApp(t, Config{})

	status, out := doRequest(t, app, http.MethodPost, "/tasks",
		`{"title":"Write report","category":"work","due_date":"2030-01-01T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Task created successfully", out["message"])

	created := out["task"].(map[string]any)
	assert.Equal(t, "Write report", created["title"])
	assert.Equal(t, "", created["description"])
	assert.Equal(t, false, created["completed"])
	assert.Equal(t, "medium", created["priority"])
	assert.Equal(t, "work", created["category"])
	assert.NotEmpty(t, created["created_at"])
	assert.NotEmpty(t, created["updated_at"])

	id := int(created["id"].(float64))
	status, out = doRequest(t, app, http.MethodGet, "/tasks/"+strconv.Itoa(id), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "message")
	assert.Equal(t, created, out["task"])
}

func TestAPI_CreateValidation(t *testing.T) {
	app := setupApp(t, Config{})

	cases := map[string]struct {
		body string
		want string
	}{
		"missing title":  {`{"description":"x"}`, "Title is required"},
		"empty title":    {`{"title":""}`, "Title is required"},
		"bad priority":   {`{"title":"a","priority":"critical"}`, "Priority must be one of: low, medium, high, urgent"},
		"bad due date":   {`{"title":"a","due_date":"tomorrow"}`, "Invalid due_date format. Use ISO format."},
		"not an object":  {`[1,2]`, domain.MsgInvalidPayload},
		"malformed json": {`{"title":`, domain.MsgInvalidPayload},
		"no body at all": {``, "Title is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, out := doRequest(t, app, http.MethodPost, "/tasks", tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tc.want, out["error"])
		})
	}

	_, out := doRequest(t, app, http.MethodGet, "/tasks", "")
	assert.Equal(t, float64(0), out["count"])
}

func TestAPI_ListFilters(t *testing.T) {
	app := setupApp(t, Config{})

	createTask(t, app, `{"title":"Buy milk","category":"home","priority":"low"}`)
	createTask(t, app, `{"title":"Ship release","category":"work","priority":"urgent","description":"tag and publish"}`)
	done := createTask(t, app, `{"title":"File taxes","category":"home","priority":"high"}`)

	id := int(done["id"].(float64))
	status, _ := doRequest(t, app, http.MethodPut, "/tasks/"+strconv.Itoa(id), `{"completed":true}`)
	require.Equal(t, http.StatusOK, status)

	cases := map[string]struct {
		query string
		count float64
	}{
		"all":              {"", 3},
		"category":         {"?category=home", 2},
		"priority":         {"?priority=urgent", 1},
		"completed true":   {"?completed=true", 1},
		"completed TRUE":   {"?completed=TRUE", 1},
		"completed other":  {"?completed=yes", 2},
		"completed empty":  {"?completed=", 2},
		"search title":     {"?search=milk", 1},
		"search desc":      {"?search=publish", 1},
		"combined":         {"?category=home&completed=false", 1},
		"unknown category": {"?category=garden", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, out := doRequest(t, app, http.MethodGet, "/tasks"+tc.query, "")
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, true, out["success"])
			assert.Equal(t, tc.count, out["count"])
			assert.Len(t, out["tasks"], int(tc.count))
		})
	}
}

func TestAPI_ListNewestFirstAndSort(t *testing.T) {
	app := setupApp(t, Config{})

	createTask(t, app, `{"title":"b","priority":"low"}`)
	createTask(t, app, `{"title":"a","priority":"urgent"}`)
	createTask(t, app, `{"title":"c","priority":"medium"}`)

	titles := func(query string) []string {
		status, out := doRequest(t, app, http.MethodGet, "/tasks"+query, "")
		require.Equal(t, http.StatusOK, status)
		var got []string
		for _, item := range out["tasks"].([]any) {
			got = append(got, item.(map[string]any)["title"].(string))
		}
		return got
	}

	assert.Equal(t, []string{"c", "a", "b"}, titles(""))
	assert.Equal(t, []string{"a", "b", "c"}, titles("?sort=title"))
	assert.Equal(t, []string{"a", "c", "b"}, titles("?sort=priority"))

	status, out := doRequest(t, app, http.MethodGet, "/tasks?sort=random", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Sort must be one of: created, due_date, priority, title", out["error"])
}

func TestAPI_UpdateTask(t *testing.T) {
	app := setupApp(t, Config{})
	created := createTask(t, app, `{"title":"Draft","category":"work","due_date":"2030-05-01"}`)
	path := "/tasks/" + strconv.Itoa(int(created["id"].(float64)))

	status, out := doRequest(t, app, http.MethodPut, path, `{"title":"Final","category":null,"due_date":""}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task updated successfully", out["message"])

	updated := out["task"].(map[string]any)
	assert.Equal(t, "Final", updated["title"])
	assert.Nil(t, updated["category"])
	assert.Nil(t, updated["due_date"])
	assert.Equal(t, created["created_at"], updated["created_at"])
	assert.NotEqual(t, created["updated_at"], updated["updated_at"])

	status, out = doRequest(t, app, http.MethodPut, path, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Title cannot be empty", out["error"])

	status, out = doRequest(t, app, http.MethodPut, path, `{"priority":"someday"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Priority must be one of: low, medium, high, urgent", out["error"])

	status, out = doRequest(t, app, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Final", out["task"].(map[string]any)["title"])
	assert.Equal(t, "medium", out["task"].(map[string]any)["priority"])
}

func TestAPI_UpdateNotFoundBeforeNoData(t *testing.T) {
	app := setupApp(t, Config{})

	status, out := doRequest(t, app, http.MethodPut, "/tasks/999", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Task not found", out["error"])

	created := createTask(t, app, `{"title":"exists"}`)
	path := "/tasks/" + strconv.Itoa(int(created["id"].(float64)))

	for _, body := range []string{`{}`, ``, `null`} {
		status, out = doRequest(t, app, http.MethodPut, path, body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "No data provided", out["error"])
	}
}

func TestAPI_DeleteTask(t *testing.T) {
	app := setupApp(t, Config{})
	created := createTask(t, app, `{"title":"Temporary"}`)
	path := "/tasks/" + strconv.Itoa(int(created["id"].(float64)))

	status, out := doRequest(t, app, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Task deleted successfully", out["message"])

	status, out = doRequest(t, app, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, out["success"])

	status, _ = doRequest(t, app, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_StatsAndCategoriesAreNotIDs(t *testing.T) {
	app := setupApp(t, Config{})

	createTask(t, app, `{"title":"a","category":"work","priority":"high"}`)
	createTask(t, app, `{"title":"b","category":"home","due_date":"2000-01-01"}`)
	done := createTask(t, app, `{"title":"c","category":"work","due_date":"2000-01-01"}`)
	createTask(t, app, `{"title":"d","category":""}`)

	status, _ := doRequest(t, app, http.MethodPut, "/tasks/"+strconv.Itoa(int(done["id"].(float64))), `{"completed":1}`)
	require.Equal(t, http.StatusOK, status)

	status, out := doRequest(t, app, http.MethodGet, "/tasks/stats", "")
	require.Equal(t, http.StatusOK, status)
	stats := out["stats"].(map[string]any)
	assert.Equal(t, float64(4), stats["total_tasks"])
	assert.Equal(t, float64(1), stats["completed_tasks"])
	assert.Equal(t, float64(3), stats["pending_tasks"])
	assert.Equal(t, float64(1), stats["overdue_tasks"])
	assert.Equal(t, map[string]any{
		"low": float64(0), "medium": float64(3), "high": float64(1), "urgent": float64(0),
	}, stats["priority_breakdown"])

	status, out = doRequest(t, app, http.MethodGet, "/tasks/categories", "")
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []any{"work", "home"}, out["categories"])
}

func TestAPI_UnknownIDsAndRoutes(t *testing.T) {
	app := setupApp(t, Config{})

	for _, path := range []string{"/tasks/42", "/tasks/-1", "/tasks/0", "/tasks/abc", "/nothing"} {
		t.Run(path, func(t *testing.T) {
			status, out := doRequest(t, app, http.MethodGet, path, "")
			assert.Equal(t, http.StatusNotFound, status)
			assert.Equal(t, false, out["success"])
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestAPI_Prefix(t *testing.T) {
	app := setupApp(t, Config{Prefix: "/api/v1"})

	status, _ := doRequest(t, app, http.MethodPost, "/api/v1/tasks", `{"title":"prefixed"}`)
	assert.Equal(t, http.StatusCreated, status)

	status, out := doRequest(t, app, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), out["count"])

	status, _ = doRequest(t, app, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, out = doRequest(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", out["status"])
}

func TestAPI_InternalErrorsCarryMessage(t *testing.T) {
	m := NewModule(Config{}, &mockLogger{})
	m.taskPort = failingPort{err: domain.Internal("list tasks", errors.New("database is locked"))}
	app := m.newApp()

	for _, path := range []string{"/tasks", "/tasks/stats"} {
		status, out := doRequest(t, app, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, false, out["success"])
		assert.Equal(t, "database is locked", out["error"])
	}

	status, out := doRequest(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", out["status"])
	assert.Equal(t, "database is locked", out["error"])
}

func TestAPI_ExtraMiddlewareRuns(t *testing.T) {
	m := NewModule(Config{}, &mockLogger{}, func(c *fiber.Ctx) error {
		c.Set("X-Test", "seen")
		return c.Next()
	})
	m.taskPort = task.NewService(setupTestDB(t), nil, &mockLogger{})
	app := m.newApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "seen", resp.Header.Get("X-Test"))
}

func TestModule_Lifecycle(t *testing.T) {
	m := NewModule(Config{}, &mockLogger{})
	assert.Equal(t, "api", m.Name())
	assert.Equal(t, []string{"task"}, m.Dependencies())
	assert.Equal(t, ":3000", m.cfg.Addr)
	assert.Equal(t, "*", m.cfg.AllowedOrigins)

	assert.Error(t, m.Start(context.Background()), "start without task port")
	assert.False(t, m.Health(context.Background()).Healthy)
	assert.NoError(t, m.Stop(context.Background()))
}
