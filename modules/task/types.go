package task

import (
	"context"

	domain "github.com/example/task-service/domain/task"
)

// ServiceError is embedded in every reply. Typed errors do not survive the
// NATS hop, so the kind travels next to the message.
type ServiceError struct {
	Error     string      `json:"error,omitempty"`
	ErrorKind domain.Kind `json:"error_kind,omitempty"`
}

// Err rebuilds the typed error carried by the reply, if any.
func (e ServiceError) Err() error {
	if e.Error == "" && e.ErrorKind == "" {
		return nil
	}
	return domain.FromKind(e.ErrorKind, e.Error)
}

func replyError(err error) ServiceError {
	return ServiceError{Error: err.Error(), ErrorKind: domain.KindOf(err)}
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Filter domain.Filter `json:"filter"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Count int           `json:"count"`
	ServiceError
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Draft domain.Draft `json:"draft"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID uint `json:"task_id"`
}

// UpdateTaskRequest is the request for a partial update.
type UpdateTaskRequest struct {
	TaskID uint         `json:"task_id"`
	Patch  domain.Patch `json:"patch"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID uint `json:"task_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ServiceError
}

// TaskReply carries a single task.
type TaskReply struct {
	Task *domain.Task `json:"task,omitempty"`
	ServiceError
}

// StatsRequest is the request for the task aggregate.
type StatsRequest struct{}

// StatsResponse is the response for the task aggregate.
type StatsResponse struct {
	Stats *domain.Stats `json:"stats,omitempty"`
	ServiceError
}

// CategoriesRequest is the request for distinct categories.
type CategoriesRequest struct{}

// CategoriesResponse is the response for distinct categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	ServiceError
}

// TaskPort defines the interface for task operations (hexagonal port).
// Driving adapters such as the HTTP API depend on this, never on the module.
type TaskPort interface {
	ListTasks(ctx context.Context, filter domain.Filter) ([]domain.Task, error)
	CreateTask(ctx context.Context, draft domain.Draft) (*domain.Task, error)
	GetTask(ctx context.Context, id uint) (*domain.Task, error)
	UpdateTask(ctx context.Context, id uint, patch domain.Patch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*domain.Stats, error)
	Categories(ctx context.Context) ([]string, error)
}
