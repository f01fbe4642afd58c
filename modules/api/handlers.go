package api

import (
	"time"

	domain "github.com/example/task-service/domain/task"
	"github.com/gofiber/fiber/v2"
)

const (
	msgCreated = "Task created successfully"
	msgUpdated = "Task updated successfully"
	msgDeleted = "Task deleted successfully"
)

// registerRoutes sets up all HTTP routes.
// stats and categories are registered before /:id, and :id only matches integers.
func (m *APIModule) registerRoutes(app *fiber.App) {
	app.Get("/health", m.healthCheck)

	p := m.cfg.Prefix
	app.Get(p+"/tasks", m.listTasks)
	app.Post(p+"/tasks", m.createTask)
	app.Get(p+"/tasks/stats", m.taskStats)
	app.Get(p+"/tasks/categories", m.listCategories)
	app.Get(p+"/tasks/:id<int>", m.getTask)
	app.Put(p+"/tasks/:id<int>", m.updateTask)
	app.Delete(p+"/tasks/:id<int>", m.deleteTask)
}

// healthCheck handles GET /health. It checks the task module with a cheap read.
func (m *APIModule) healthCheck(c *fiber.Ctx) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := m.taskPort.Categories(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Success:   false,
			Status:    "unhealthy",
			Timestamp: now,
			Error:     err.Error(),
		})
	}
	return c.JSON(HealthResponse{Success: true, Status: "healthy", Timestamp: now})
}

// taskID reads the :id route parameter. IDs that cannot name a task are reported as not found.
func taskID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, domain.ErrTaskNotFound
	}
	return uint(id), nil
}

// listTasks handles GET /tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	filter := domain.Filter{
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Sort:     domain.SortOrder(c.Query("sort")),
	}
	if c.Context().QueryArgs().Has("completed") {
		completed := domain.ParseCompleted(c.Query("completed"))
		filter.Completed = &completed
	}

	tasks, err := m.taskPort.ListTasks(c.UserContext(), filter)
	if err != nil {
		return m.writeError(c, err)
	}

	return c.JSON(TaskListResponse{
		Success: true,
		Tasks:   tasks,
		Count:   len(tasks),
	})
}

// createTask handles POST /tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	draft, err := domain.DecodeDraft(c.Body())
	if err != nil {
		return m.writeError(c, err)
	}

	t, err := m.taskPort.CreateTask(c.UserContext(), draft)
	if err != nil {
		return m.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TaskResponse{
		Success: true,
		Task:    t,
		Message: msgCreated,
	})
}

// getTask handles GET /tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	t, err := m.taskPort.GetTask(c.UserContext(), id)
	if err != nil {
		return m.writeError(c, err)
	}

	return c.JSON(TaskResponse{Success: true, Task: t})
}

// updateTask handles PUT /tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	patch, err := domain.DecodePatch(c.Body())
	if err != nil {
		return m.writeError(c, err)
	}

	t, err := m.taskPort.UpdateTask(c.UserContext(), id, patch)
	if err != nil {
		return m.writeError(c, err)
	}

	return c.JSON(TaskResponse{
		Success: true,
		Task:    t,
		Message: msgUpdated,
	})
}

// deleteTask handles DELETE /tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	if err := m.taskPort.DeleteTask(c.UserContext(), id); err != nil {
		return m.writeError(c, err)
	}

	return c.JSON(MessageResponse{Success: true, Message: msgDeleted})
}

// taskStats handles GET /tasks/stats.
func (m *APIModule) taskStats(c *fiber.Ctx) error {
	stats, err := m.taskPort.Stats(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}

	return c.JSON(StatsResponse{Success: true, Stats: stats})
}

// listCategories handles GET /tasks/categories.
func (m *APIModule) listCategories(c *fiber.Ctx) error {
	categories, err := m.taskPort.Categories(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}

	return c.JSON(CategoriesResponse{Success: true, Categories: categories})
}
