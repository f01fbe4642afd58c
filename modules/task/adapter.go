package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/example/task-service/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// DefaultCallTimeout bounds a single service call when no timeout is configured.
const DefaultCallTimeout = 5 * time.Second

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
	timeout   time.Duration
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer, timeout time.Duration) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &taskAdapter{container: container, timeout: timeout}
}

// callService invokes a task service and decodes its reply into resp.
// Transport failures are reported as internal errors.
func callService[Req, Resp any](ctx context.Context, a *taskAdapter, service string, req *Req, resp *Resp) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return &domain.InternalError{Op: service, Err: fmt.Errorf("%s service call failed: %w", service, err)}
	}
	return nil
}

// ListTasks lists tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	req := ListTasksRequest{Filter: filter}
	var resp ListTasksResponse
	if err := callService(ctx, a, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	return resp.Tasks, nil
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, draft domain.Draft) (*domain.Task, error) {
	req := CreateTaskRequest{Draft: draft}
	var resp TaskReply
	if err := callService(ctx, a, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, id uint) (*domain.Task, error) {
	req := GetTaskRequest{TaskID: id}
	var resp TaskReply
	if err := callService(ctx, a, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// UpdateTask applies a partial update via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, id uint, patch domain.Patch) (*domain.Task, error) {
	req := UpdateTaskRequest{TaskID: id, Patch: patch}
	var resp TaskReply
	if err := callService(ctx, a, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id uint) error {
	req := DeleteTaskRequest{TaskID: id}
	var resp DeleteTaskResponse
	if err := callService(ctx, a, "delete-task", &req, &resp); err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return &domain.InternalError{Op: "delete-task", Err: fmt.Errorf("task not deleted: %d", id)}
	}
	return nil
}

// Stats retrieves the task aggregate via the task-stats service.
func (a *taskAdapter) Stats(ctx context.Context) (*domain.Stats, error) {
	req := StatsRequest{}
	var resp StatsResponse
	if err := callService(ctx, a, "task-stats", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// Categories retrieves distinct categories via the list-categories service.
func (a *taskAdapter) Categories(ctx context.Context) ([]string, error) {
	req := CategoriesRequest{}
	var resp CategoriesResponse
	if err := callService(ctx, a, "list-categories", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	return resp.Categories, nil
}
